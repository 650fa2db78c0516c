package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/ozytarget/invozy-backend/internal/domain"
	"github.com/ozytarget/invozy-backend/internal/repository"
)

var (
	ErrClientEmailRequired = errors.New("client email is required")
	ErrDuplicateClient     = errors.New("a client with this email already exists")
)

//go:generate mockgen -source=client_service.go -destination=client_service_mock.go -package=service
type ClientStore interface {
	List(ctx context.Context, ownerUserID int64, limit int) ([]domain.Client, error)
	Insert(ctx context.Context, ownerUserID int64, c domain.Client) (*domain.Client, error)
}

// ClientService serves the client directory: explicitly stored records merged
// with clients observed on documents, keyed by normalized email.
type ClientService struct {
	Clients   ClientStore
	Documents DocumentStore
}

// Directory merges stored clients with clients derived from the document set.
// Stored fields win over document snapshots; document counts cover every
// document while total billed sums invoice amounts only.
func (s *ClientService) Directory(ctx context.Context, ownerUserID int64) ([]domain.Client, error) {
	stored, err := s.Clients.List(ctx, ownerUserID, 0)
	if err != nil {
		return nil, err
	}
	docs, err := s.Documents.List(ctx, ownerUserID, repository.ListFilter{})
	if err != nil {
		return nil, err
	}
	return MergeDirectory(stored, docs), nil
}

func (s *ClientService) Add(ctx context.Context, ownerUserID int64, c domain.Client) (*domain.Client, error) {
	if strings.TrimSpace(c.Email) == "" {
		return nil, ErrClientEmailRequired
	}
	out, err := s.Clients.Insert(ctx, ownerUserID, c)
	if err != nil {
		if repository.IsDuplicate(err) {
			return nil, ErrDuplicateClient
		}
		return nil, err
	}
	return out, nil
}

// MergeDirectory is the pure aggregation behind Directory.
func MergeDirectory(stored []domain.Client, docs []*domain.Document) []domain.Client {
	byEmail := make(map[string]*domain.Client, len(stored))
	for i := range stored {
		c := stored[i]
		key := domain.NormalizeEmail(c.Email)
		c.Email = key
		byEmail[key] = &c
	}

	for _, d := range docs {
		key := domain.NormalizeEmail(d.Client.Email)
		if key == "" {
			continue
		}
		entry, ok := byEmail[key]
		if !ok {
			entry = &domain.Client{
				Name:    d.Client.Name,
				Email:   key,
				Phone:   d.Client.Phone,
				Address: d.Client.Address,
			}
			byEmail[key] = entry
		}
		entry.DocumentCount++
		if d.Type == domain.DocTypeInvoice {
			entry.TotalBilled += d.Amount
		}
	}

	out := make([]domain.Client, 0, len(byEmail))
	for _, c := range byEmail {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].Email < out[j].Email
		}
		return out[i].Name < out[j].Name
	})
	return out
}
