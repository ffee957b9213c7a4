package inventory

import (
	"context"

	"github.com/erp/realestate/internal/application/uow"
	"github.com/erp/realestate/internal/domain/inventory"
	"github.com/erp/realestate/internal/domain/project"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockService records stock moves and derives stock levels from them
type StockService struct {
	txScope     uow.TransactionScope
	itemRepo    inventory.ItemRepository
	moveRepo    inventory.StockMoveRepository
	projectRepo project.Repository
	logger      *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	txScope uow.TransactionScope,
	itemRepo inventory.ItemRepository,
	moveRepo inventory.StockMoveRepository,
	projectRepo project.Repository,
	logger *zap.Logger,
) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{
		txScope:     txScope,
		itemRepo:    itemRepo,
		moveRepo:    moveRepo,
		projectRepo: projectRepo,
		logger:      logger,
	}
}

// Record writes a stock move. The item row is locked so the balance check of
// an OUT move and its insert are not interleaved with another issue.
func (s *StockService) Record(ctx context.Context, tenantID uuid.UUID, req RecordMoveRequest) (*RecordMoveResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "record_move")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrItemID, req.ItemID.String(),
		telemetry.SpanAttrQuantity, req.Qty.String(),
	)

	if req.ProjectID != nil {
		if _, err := s.projectRepo.FindByIDForTenant(ctx, tenantID, *req.ProjectID); err != nil {
			return nil, err
		}
	}
	date := shared.Today()
	if req.Date != "" {
		parsed, err := shared.ParseDate(req.Date)
		if err != nil {
			return nil, err
		}
		date = parsed
	}

	var (
		move  *inventory.StockMove
		level inventory.StockLevel
	)
	err := s.txScope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		item, err := repos.Items().FindByIDForUpdate(ctx, tenantID, req.ItemID)
		if err != nil {
			return err
		}
		in, out, err := repos.StockMoves().SumQty(ctx, tenantID, item.ID)
		if err != nil {
			return err
		}
		move, err = inventory.NewStockMove(tenantID, item, req.ProjectID, req.Qty, inventory.Direction(req.Direction), date, req.Notes, in.Sub(out))
		if err != nil {
			return err
		}
		move.CreatedBy = req.CreatedBy
		if err := repos.StockMoves().Save(ctx, move); err != nil {
			return err
		}
		if move.Direction == inventory.DirectionIn {
			in = in.Add(move.Qty)
		} else {
			out = out.Add(move.Qty)
		}
		level = item.Level(in, out)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if move.Direction == inventory.DirectionOut && level.IsLow {
		s.logger.Warn("Item at or below minimum stock",
			zap.String("tenant_id", tenantID.String()),
			zap.String("item_code", level.Code),
			zap.String("balance", level.Balance.String()),
			zap.String("minimum_stock", level.MinimumStock.String()),
		)
	}
	return &RecordMoveResponse{Move: ToStockMoveResponse(move), Level: level}, nil
}

// Moves lists stock moves with pagination
func (s *StockService) Moves(ctx context.Context, tenantID uuid.UUID, filter inventory.StockMoveFilter) ([]StockMoveResponse, int64, error) {
	moves, err := s.moveRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.moveRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]StockMoveResponse, len(moves))
	for i := range moves {
		out[i] = ToStockMoveResponse(&moves[i])
	}
	return out, total, nil
}

// Balance returns an item's stock level: Σ IN − Σ OUT
func (s *StockService) Balance(ctx context.Context, tenantID, itemID uuid.UUID) (*inventory.StockLevel, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	in, out, err := s.moveRepo.SumQty(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	level := item.Level(in, out)
	return &level, nil
}

// Levels returns the stock level of every item
func (s *StockService) Levels(ctx context.Context, tenantID uuid.UUID) ([]inventory.StockLevel, error) {
	items, err := s.itemRepo.FindAllForTenant(ctx, tenantID, shared.Filter{})
	if err != nil {
		return nil, err
	}
	levels := make([]inventory.StockLevel, 0, len(items))
	for i := range items {
		in, out, err := s.moveRepo.SumQty(ctx, tenantID, items[i].ID)
		if err != nil {
			return nil, err
		}
		levels = append(levels, items[i].Level(in, out))
	}
	return levels, nil
}

// LowStock returns items whose balance is at or below their minimum
func (s *StockService) LowStock(ctx context.Context, tenantID uuid.UUID) ([]inventory.StockLevel, error) {
	levels, err := s.Levels(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	low := make([]inventory.StockLevel, 0)
	for _, l := range levels {
		if l.IsLow {
			low = append(low, l)
		}
	}
	return low, nil
}

// LowStockCount implements telemetry.StockMetricsProvider
func (s *StockService) LowStockCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	low, err := s.LowStock(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return int64(len(low)), nil
}

var _ telemetry.StockMetricsProvider = (*StockService)(nil)
