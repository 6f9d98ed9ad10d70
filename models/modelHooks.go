package models

import (
	"gorm.io/gorm"
)

// Entity saves feed the search index through the transactional outbox: the
// hook only writes the outbox row inside the running transaction, the
// dispatcher publishes after commit. A failing index therefore never fails a
// save, and a failed save never reaches the index.

func (o *Object) AfterCreate(tx *gorm.DB) (err error) {
	if err := SaveHistoryCreate(tx, o.ID, o, "Object created: "+o.NameRu); err != nil {
		return err
	}
	return PublishToSearchIndex(tx.Statement.Context, tx, ModeratedEntityObject, o.ID, SearchActionIndex, o.SearchDocuments())
}

func (o *Object) AfterUpdate(tx *gorm.DB) (err error) {
	if err := SaveHistoryUpdate(tx, o.ID, o, "Object updated."); err != nil {
		return err
	}
	return PublishToSearchIndex(tx.Statement.Context, tx, ModeratedEntityObject, o.ID, SearchActionIndex, o.SearchDocuments())
}

func (o *Object) AfterDelete(tx *gorm.DB) (err error) {
	if err := DeleteModerationRecord(tx, ModeratedEntityObject, o.ID); err != nil {
		return err
	}
	if err := tx.Where("object_id = ?", o.ID).Delete(&Feedback{}).Error; err != nil {
		return err
	}
	if err := SaveHistoryDelete(tx, o.ID, o, "Object deleted."); err != nil {
		return err
	}
	return PublishToSearchIndex(tx.Statement.Context, tx, ModeratedEntityObject, o.ID, SearchActionDelete, nil)
}

func (p *Partner) AfterCreate(tx *gorm.DB) (err error) {
	if err := SaveHistoryCreate(tx, p.ID, p, "Partner created: "+p.NameRu); err != nil {
		return err
	}
	return PublishToSearchIndex(tx.Statement.Context, tx, ModeratedEntityPartner, p.ID, SearchActionIndex, p.SearchDocuments())
}

func (p *Partner) AfterUpdate(tx *gorm.DB) (err error) {
	if err := SaveHistoryUpdate(tx, p.ID, p, "Partner updated."); err != nil {
		return err
	}
	return PublishToSearchIndex(tx.Statement.Context, tx, ModeratedEntityPartner, p.ID, SearchActionIndex, p.SearchDocuments())
}

func (p *Partner) AfterDelete(tx *gorm.DB) (err error) {
	if err := DeleteModerationRecord(tx, ModeratedEntityPartner, p.ID); err != nil {
		return err
	}
	if err := SaveHistoryDelete(tx, p.ID, p, "Partner deleted."); err != nil {
		return err
	}
	return PublishToSearchIndex(tx.Statement.Context, tx, ModeratedEntityPartner, p.ID, SearchActionDelete, nil)
}

func (p *Publication) AfterCreate(tx *gorm.DB) (err error) {
	if err := SaveHistoryCreate(tx, p.ID, p, "Publication created."); err != nil {
		return err
	}
	return PublishToSearchIndex(tx.Statement.Context, tx, ModeratedEntityPublication, p.ID, SearchActionIndex, p.SearchDocuments())
}

func (p *Publication) AfterUpdate(tx *gorm.DB) (err error) {
	if err := SaveHistoryUpdate(tx, p.ID, p, "Publication updated."); err != nil {
		return err
	}
	return PublishToSearchIndex(tx.Statement.Context, tx, ModeratedEntityPublication, p.ID, SearchActionIndex, p.SearchDocuments())
}

func (p *Publication) AfterDelete(tx *gorm.DB) (err error) {
	if err := DeleteModerationRecord(tx, ModeratedEntityPublication, p.ID); err != nil {
		return err
	}
	if err := SaveHistoryDelete(tx, p.ID, p, "Publication deleted."); err != nil {
		return err
	}
	return PublishToSearchIndex(tx.Statement.Context, tx, ModeratedEntityPublication, p.ID, SearchActionDelete, nil)
}
