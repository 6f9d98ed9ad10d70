package searchsync

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/medvisor/sanatoria_backend/models"
	"github.com/redis/go-redis/v9"
)

// Index is the full-text index collaborator: documents are keyed by entity id
// within a language-suffixed index name (objects-ru, objects-en, ...).
type Index interface {
	Index(ctx context.Context, doc models.SearchDocument) error
	Delete(ctx context.Context, entityType string, entityId int) error
	Search(ctx context.Context, indexName string, query string, limit int) ([]models.SearchDocument, error)
}

// RedisIndex keeps one hash per document plus token posting sets for naive
// term lookup. Good enough for a directory of this size; swapping in a real
// search engine only means another Index implementation.
type RedisIndex struct {
	Client *redis.Client
}

func NewRedisIndex(client *redis.Client) *RedisIndex {
	return &RedisIndex{Client: client}
}

func docKey(indexName string, id int) string {
	return fmt.Sprintf("search:%s:%d", indexName, id)
}

func docTokensKey(indexName string, id int) string {
	return fmt.Sprintf("search:%s:%d:tokens", indexName, id)
}

func postingKey(indexName, token string) string {
	return fmt.Sprintf("search:%s:token:%s", indexName, token)
}

// Tokenize lowercases and splits on anything that is not a letter or digit,
// so it handles cyrillic and latin text alike. Single-rune tokens are noise
// and dropped.
func Tokenize(parts ...string) []string {
	seen := make(map[string]bool)
	var tokens []string
	for _, part := range parts {
		fields := strings.FieldsFunc(strings.ToLower(part), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		for _, field := range fields {
			if len([]rune(field)) < 2 || seen[field] {
				continue
			}
			seen[field] = true
			tokens = append(tokens, field)
		}
	}
	return tokens
}

func (ri *RedisIndex) Index(ctx context.Context, doc models.SearchDocument) error {
	if ri.Client == nil {
		return nil
	}
	indexName := doc.IndexName()

	// Drop stale postings first so removed words stop matching.
	if err := ri.removePostings(ctx, indexName, doc.EntityId); err != nil {
		return err
	}

	tags, err := json.Marshal(doc.Tags)
	if err != nil {
		return err
	}
	tokens := Tokenize(append([]string{doc.Title, doc.Description}, doc.Tags...)...)

	pipe := ri.Client.TxPipeline()
	pipe.HSet(ctx, docKey(indexName, doc.EntityId), map[string]interface{}{
		"entity_type": doc.EntityType,
		"entity_id":   doc.EntityId,
		"locale":      doc.Locale,
		"title":       doc.Title,
		"description": doc.Description,
		"tags":        string(tags),
	})
	pipe.Del(ctx, docTokensKey(indexName, doc.EntityId))
	for _, token := range tokens {
		pipe.SAdd(ctx, postingKey(indexName, token), doc.EntityId)
		pipe.SAdd(ctx, docTokensKey(indexName, doc.EntityId), token)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (ri *RedisIndex) Delete(ctx context.Context, entityType string, entityId int) error {
	if ri.Client == nil {
		return nil
	}
	for _, locale := range models.SupportedLocales {
		indexName := entityType + "s-" + string(locale)
		if err := ri.removePostings(ctx, indexName, entityId); err != nil {
			return err
		}
		if err := ri.Client.Del(ctx, docKey(indexName, entityId)).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (ri *RedisIndex) removePostings(ctx context.Context, indexName string, entityId int) error {
	tokens, err := ri.Client.SMembers(ctx, docTokensKey(indexName, entityId)).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}
	pipe := ri.Client.TxPipeline()
	for _, token := range tokens {
		pipe.SRem(ctx, postingKey(indexName, token), entityId)
	}
	pipe.Del(ctx, docTokensKey(indexName, entityId))
	_, err = pipe.Exec(ctx)
	return err
}

func (ri *RedisIndex) Search(ctx context.Context, indexName string, query string, limit int) ([]models.SearchDocument, error) {
	if ri.Client == nil {
		return nil, nil
	}
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(tokens))
	for _, token := range tokens {
		keys = append(keys, postingKey(indexName, token))
	}
	ids, err := ri.Client.SInter(ctx, keys...).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}

	var docs []models.SearchDocument
	for _, id := range ids {
		if limit > 0 && len(docs) >= limit {
			break
		}
		fields, err := ri.Client.HGetAll(ctx, "search:"+indexName+":"+id).Result()
		if err != nil || len(fields) == 0 {
			continue
		}
		doc := models.SearchDocument{
			EntityType:  fields["entity_type"],
			Locale:      fields["locale"],
			Title:       fields["title"],
			Description: fields["description"],
		}
		fmt.Sscanf(fields["entity_id"], "%d", &doc.EntityId)
		if raw := fields["tags"]; raw != "" {
			_ = json.Unmarshal([]byte(raw), &doc.Tags)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
