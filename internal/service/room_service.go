package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/contest-seating-api/internal/dto"
	"github.com/noah-isme/contest-seating-api/internal/models"
	"github.com/noah-isme/contest-seating-api/internal/seating"
	appErrors "github.com/noah-isme/contest-seating-api/pkg/errors"
)

type roomRepository interface {
	List(ctx context.Context) ([]models.Room, error)
	FindByID(ctx context.Context, id string) (*models.Room, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, room *models.Room) error
	CreateMany(ctx context.Context, rooms []models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id string) error
}

// RoomService manages exam rooms and their seat geometry.
type RoomService struct {
	repo      roomRepository
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoomService constructs the room service.
func NewRoomService(repo roomRepository, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns rooms ordered by name with numbers compared numerically ("Sala 9" before "Sala 10").
func (s *RoomService) List(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	if rooms == nil {
		rooms = []models.Room{}
	}
	sort.SliceStable(rooms, func(i, j int) bool {
		return seating.CompareRoomNames(rooms[i].Name, rooms[j].Name) < 0
	})
	return rooms, nil
}

// Create adds a room.
func (s *RoomService) Create(ctx context.Context, req dto.RoomRequest) (*models.Room, error) {
	req, err := s.validateRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, req.Name, ""); err != nil {
		return nil, err
	}
	room := &models.Room{Name: req.Name, Floor: req.Floor, Seats: req.Seats, Rows: req.Rows, Cols: req.Cols}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	return room, nil
}

// Update replaces a room's attributes.
func (s *RoomService) Update(ctx context.Context, id string, req dto.RoomRequest) (*models.Room, error) {
	req, err := s.validateRequest(req)
	if err != nil {
		return nil, err
	}
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	if err := s.ensureUniqueName(ctx, req.Name, id); err != nil {
		return nil, err
	}
	room.Name = req.Name
	room.Floor = req.Floor
	room.Seats = req.Seats
	room.Rows = req.Rows
	room.Cols = req.Cols
	if err := s.repo.Update(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update room")
	}
	return room, nil
}

// Delete removes a room.
func (s *RoomService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete room")
	}
	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     userIDPtr(actor),
			Action:     models.AuditActionRoomDelete,
			Resource:   "room",
			ResourceID: strPtr(id),
			IPAddress:  "system",
			UserAgent:  "room-service",
		}); err != nil {
			s.logger.Warn("failed to record room audit", zap.Error(err))
		}
	}
	return nil
}

// SeedDefaults inserts the default room set when no room exists yet.
func (s *RoomService) SeedDefaults(ctx context.Context) (*dto.SeedRoomsResponse, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count rooms")
	}
	if count > 0 {
		return &dto.SeedRoomsResponse{Skipped: true}, nil
	}
	rooms := make([]models.Room, len(models.DefaultRooms))
	copy(rooms, models.DefaultRooms)
	if err := s.repo.CreateMany(ctx, rooms); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed rooms")
	}
	s.logger.Info("default rooms seeded", zap.Int("count", len(rooms)))
	return &dto.SeedRoomsResponse{Created: len(rooms)}, nil
}

func (s *RoomService) validateRequest(req dto.RoomRequest) (dto.RoomRequest, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Floor = strings.TrimSpace(req.Floor)
	if req.Floor == "" {
		req.Floor = models.DefaultFloor
	}
	if err := s.validator.Struct(req); err != nil {
		return req, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}
	if req.Rows*req.Cols < req.Seats && !req.ConfirmGeometry {
		return req, appErrors.Clone(appErrors.ErrGeometryConfirmation,
			fmt.Sprintf("%d seats do not fit a %dx%d grid; confirm to save anyway", req.Seats, req.Rows, req.Cols))
	}
	return req, nil
}

func (s *RoomService) ensureUniqueName(ctx context.Context, name, excludeID string) error {
	exists, err := s.repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate room")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "a room with this name already exists")
	}
	return nil
}
