package report

import (
	"context"
	"strings"
	"time"

	"github.com/medstock/medstock/internal/domain/shared"
)

type CreateInput struct {
	Subject     string `json:"asunto"`
	Description string `json:"descripcion"`
	ReportedBy  string `json:"reportado_por"`
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, in *CreateInput) (*Report, error) {
	subject := strings.TrimSpace(in.Subject)
	description := strings.TrimSpace(in.Description)
	reportedBy := strings.TrimSpace(in.ReportedBy)
	switch {
	case subject == "":
		return nil, shared.Validationf("asunto is required")
	case description == "":
		return nil, shared.Validationf("descripcion is required")
	case reportedBy == "":
		return nil, shared.Validationf("reportado_por is required")
	}

	r := &Report{
		Subject:     subject,
		Description: description,
		ReportedBy:  reportedBy,
		CreatedAt:   s.now(),
	}
	id, err := s.repo.Insert(ctx, r)
	if err != nil {
		return nil, err
	}
	r.ID = id
	return r, nil
}

func (s *Service) List(ctx context.Context) ([]*Report, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByDate(ctx context.Context, day time.Time) ([]*Report, error) {
	return s.repo.ListByDate(ctx, day)
}

func (s *Service) MarkAttended(ctx context.Context, id int64) error {
	return s.repo.MarkAttended(ctx, id, s.now())
}
