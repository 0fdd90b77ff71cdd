// Package es 提供了与 Elasticsearch 交互的客户端功能，用于对话检索。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"tigersai/internal/config"
	"tigersai/internal/model"
	"tigersai/pkg/log"
)

// conversationMapping 对话索引的映射，owner_id 用于按用户过滤。
const conversationMapping = `{
	"mappings": {
		"properties": {
			"doc_id": { "type": "keyword" },
			"entry_id": { "type": "long" },
			"owner_id": { "type": "long" },
			"username": { "type": "keyword" },
			"role": { "type": "keyword" },
			"user_message": { "type": "text" },
			"bot_response": { "type": "text" },
			"timestamp": { "type": "date" }
		}
	}
}`

// Client 封装了 Elasticsearch 客户端与对话索引名。
type Client struct {
	es    *elasticsearch.Client
	index string
}

// NewClient 使用已有的 elasticsearch.Client 创建 Client，主要用于测试。
func NewClient(es *elasticsearch.Client, index string) *Client {
	return &Client{es: es, index: index}
}

// InitES 初始化 Elasticsearch 客户端并确保对话索引存在。Addresses 为空时返回 nil。
func InitES(esCfg config.ElasticsearchConfig) (*Client, error) {
	if strings.TrimSpace(esCfg.Addresses) == "" {
		log.Info("Elasticsearch 未配置，对话检索已关闭")
		return nil, nil
	}
	cfg := elasticsearch.Config{
		Addresses: strings.Split(esCfg.Addresses, ","),
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	c := NewClient(es, esCfg.IndexName)
	if err := c.EnsureIndex(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

// EnsureIndex 检查索引是否存在，如果不存在则创建它
func (c *Client) EnsureIndex(ctx context.Context) error {
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", c.index)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	res, err = c.es.Indices.Create(
		c.index,
		c.es.Indices.Create.WithBody(strings.NewReader(conversationMapping)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", c.index, err)
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", c.index, res.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	log.Infof("索引 '%s' 创建成功", c.index)
	return nil
}

// IndexConversation 将单条对话写入索引，DocID 相同时覆盖。
func (c *Client) IndexConversation(ctx context.Context, doc model.ConversationDocument) error {
	if doc.DocID == "" {
		doc.DocID = strconv.FormatUint(uint64(doc.EntryID), 10)
	}
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      c.index,
		DocumentID: doc.DocID,
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("索引对话到 Elasticsearch 出错: %s", res.String())
		return errors.New("failed to index conversation")
	}
	return nil
}

// searchResponse 只解析用到的字段。
type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64                    `json:"_score"`
			Source model.ConversationDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchConversations 在指定 owner 的对话中做全文检索，按相关度排序。
func (c *Client) SearchConversations(ctx context.Context, ownerID uint, query string, size int) ([]model.SearchHit, error) {
	body := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"owner_id": ownerID}},
				},
				"must": []interface{}{
					map[string]interface{}{
						"multi_match": map[string]interface{}{
							"query":  query,
							"fields": []string{"user_message", "bot_response"},
						},
					},
				},
			},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search error: %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	hits := make([]model.SearchHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		// 索引层已过滤，这里再校验一次 owner
		if h.Source.OwnerID != ownerID {
			continue
		}
		hits = append(hits, model.SearchHit{
			EntryID:     h.Source.EntryID,
			OwnerID:     h.Source.OwnerID,
			UserMessage: h.Source.UserMessage,
			BotResponse: h.Source.BotResponse,
			Timestamp:   model.LocalTime(h.Source.Timestamp),
			Score:       h.Score,
		})
	}
	return hits, nil
}
