package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parcelbilling/internal/model"
	"parcelbilling/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	CodAllowed       bool    `json:"cod_allowed"`
	FodAllowed       bool    `json:"fod_allowed"`
	ManualRateTierID *string `json:"manual_rate_tier_id"`
	IsActive         bool    `json:"is_active"`
	CreatedAt        string  `json:"created_at"`
}

// ClientService exposes billing accounts read-only; the account system owns
// their lifecycle.
type ClientService interface {
	GetClient(ctx context.Context, id string) (ClientResponse, error)
	ListClients(ctx context.Context, page, limit int) ([]ClientResponse, int64, error)
}

type clientService struct {
	clientRepo repository.ClientRepository
}

func NewClientService(clientRepo repository.ClientRepository) ClientService {
	return &clientService{clientRepo: clientRepo}
}

func (s *clientService) GetClient(ctx context.Context, id string) (ClientResponse, error) {
	clientID, err := uuid.Parse(id)
	if err != nil {
		return ClientResponse{}, fmt.Errorf("invalid client id: %w", err)
	}

	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ClientResponse{}, ErrClientNotFound
		}
		return ClientResponse{}, fmt.Errorf("failed to fetch client: %w", err)
	}

	return toClientResponse(*client), nil
}

func (s *clientService) ListClients(ctx context.Context, page, limit int) ([]ClientResponse, int64, error) {
	clients, total, err := s.clientRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch clients: %w", err)
	}

	res := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		res = append(res, toClientResponse(c))
	}
	return res, total, nil
}

func toClientResponse(c model.Client) ClientResponse {
	resp := ClientResponse{
		ID:         c.ID.String(),
		Name:       c.Name,
		CodAllowed: c.CodAllowed,
		FodAllowed: c.FodAllowed,
		IsActive:   c.IsActive,
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
	}
	if c.ManualRateTierID != nil {
		s := c.ManualRateTierID.String()
		resp.ManualRateTierID = &s
	}
	return resp
}
