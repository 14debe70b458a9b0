package search

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

var ErrClosed = errors.New("search engine closed")

// Doc 归档条目的可检索字段
type Doc struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FileName string `json:"file_name"`
	Language string `json:"language"`
	Text     string `json:"text"`
}

// Hit 单条检索结果
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Engine 归档全文检索
type Engine interface {
	Index(ctx context.Context, doc Doc) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit int) ([]Hit, error)
	Close() error
}

type bleveEngine struct {
	index  bleve.Index
	mu     sync.RWMutex
	closed bool
}

// New 打开或创建索引
func New(indexPath string) (Engine, error) {
	var idx bleve.Index
	if _, err := os.Stat(indexPath); err == nil {
		i, e := bleve.Open(indexPath)
		if e != nil {
			return nil, e
		}
		idx = i
	} else if os.IsNotExist(err) {
		i, e := bleve.New(indexPath, bleve.NewIndexMapping())
		if e != nil {
			return nil, e
		}
		idx = i
	} else {
		return nil, err
	}
	return &bleveEngine{index: idx}, nil
}

// NewInMemory 创建内存索引，测试用
func NewInMemory() (Engine, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}
	return &bleveEngine{index: idx}, nil
}

func (e *bleveEngine) guard() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ErrClosed
	}
	return nil
}

func (e *bleveEngine) Index(ctx context.Context, doc Doc) error {
	if err := e.guard(); err != nil {
		return err
	}
	return e.index.Index(doc.ID, doc)
}

func (e *bleveEngine) Delete(ctx context.Context, id string) error {
	if err := e.guard(); err != nil {
		return err
	}
	return e.index.Delete(id)
}

func (e *bleveEngine) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	res, err := e.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}
	return hits, nil
}

func (e *bleveEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.index.Close()
}
