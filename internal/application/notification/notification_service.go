package notification

import (
	"context"
	"time"

	appproject "github.com/erp/realestate/internal/application/project"
	"github.com/erp/realestate/internal/domain/contract"
	"github.com/erp/realestate/internal/domain/inventory"
	"github.com/erp/realestate/internal/domain/notification"
	"github.com/erp/realestate/internal/domain/party"
	"github.com/erp/realestate/internal/domain/settlement"
	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockLevels reports items at or below their minimum
type StockLevels interface {
	LowStock(ctx context.Context, tenantID uuid.UUID) ([]inventory.StockLevel, error)
}

// ProjectBudgets reports the spend of ongoing projects
type ProjectBudgets interface {
	Budgets(ctx context.Context, tenantID uuid.UUID) ([]appproject.BudgetResponse, error)
}

// NotificationService generates and serves user notifications
type NotificationService struct {
	repo           notification.Repository
	contractRepo   contract.ContractRepository
	customerRepo   party.CustomerRepository
	settlementRepo settlement.Repository
	stock          StockLevels
	budgets        ProjectBudgets
	logger         *zap.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	repo notification.Repository,
	contractRepo contract.ContractRepository,
	customerRepo party.CustomerRepository,
	settlementRepo settlement.Repository,
	stock StockLevels,
	budgets ProjectBudgets,
	logger *zap.Logger,
) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		repo:           repo,
		contractRepo:   contractRepo,
		customerRepo:   customerRepo,
		settlementRepo: settlementRepo,
		stock:          stock,
		budgets:        budgets,
		logger:         logger,
	}
}

// sweepInput is the tenant-wide data every user's notifications are built from
type sweepInput struct {
	installments []notification.DueInstallment
	lowStock     []notification.LowStock
	budgets      []notification.BudgetAlert
	settlements  []notification.PendingSettlement
}

// collect loads unpaid installments due within maxDueDays (and every overdue
// one), low stock items, ongoing project budgets and old pending settlements
func (s *NotificationService) collect(ctx context.Context, tenantID uuid.UUID, today time.Time, maxDueDays int) (*sweepInput, error) {
	in := &sweepInput{}

	horizon := today.AddDate(0, 0, maxDueDays)
	installments, err := s.contractRepo.FindInstallments(ctx, tenantID, contract.InstallmentFilter{UnpaidOnly: true, DueTo: &horizon})
	if err != nil {
		return nil, err
	}
	contracts := make(map[uuid.UUID]*contract.Contract)
	customers := make(map[uuid.UUID]string)
	for i := range installments {
		inst := &installments[i]
		c, ok := contracts[inst.ContractID]
		if !ok {
			c, err = s.contractRepo.FindByIDForTenant(ctx, tenantID, inst.ContractID)
			if err != nil {
				return nil, err
			}
			contracts[inst.ContractID] = c
		}
		name, ok := customers[c.CustomerID]
		if !ok {
			customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, c.CustomerID)
			if err != nil {
				return nil, err
			}
			name = customer.Name
			customers[c.CustomerID] = name
		}
		in.installments = append(in.installments, notification.DueInstallment{
			InstallmentID: inst.ID,
			ContractCode:  c.Code,
			CustomerName:  name,
			SeqNo:         inst.SeqNo,
			DueDate:       inst.DueDate,
			Remaining:     inst.Remaining(),
		})
	}

	if s.stock != nil {
		levels, err := s.stock.LowStock(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		for _, l := range levels {
			in.lowStock = append(in.lowStock, notification.LowStock{
				ItemID: l.ItemID, Name: l.Name, UOM: l.UOM, Balance: l.Balance, Minimum: l.MinimumStock,
			})
		}
	}

	if s.budgets != nil {
		budgets, err := s.budgets.Budgets(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		for _, b := range budgets {
			in.budgets = append(in.budgets, notification.BudgetAlert{
				ProjectID: b.ProjectID, Name: b.Name, UsedPercent: b.UsedPercent, Remaining: b.Remaining,
			})
		}
	}

	pending := settlement.StatusPending
	cutoff := today.AddDate(0, 0, -notification.SettlementPendingAfterDays)
	settlements, err := s.settlementRepo.FindAllForTenant(ctx, tenantID, settlement.Filter{Status: &pending, CreatedBefore: &cutoff})
	if err != nil {
		return nil, err
	}
	for _, st := range settlements {
		in.settlements = append(in.settlements, notification.PendingSettlement{
			SettlementID: st.ID, Number: st.Number, Amount: st.AmountMoney(), CreatedAt: st.CreatedAt,
		})
	}
	return in, nil
}

func (s *NotificationService) write(ctx context.Context, items []*notification.Notification) (int, error) {
	created := 0
	for _, n := range items {
		ok, err := s.repo.Create(ctx, n)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func build(settings notification.Settings, tenantID uuid.UUID, today time.Time, in *sweepInput) []*notification.Notification {
	b := notification.Builder{TenantID: tenantID, Settings: settings, Today: today}
	var out []*notification.Notification
	out = append(out, b.Installments(in.installments)...)
	out = append(out, b.LowStock(in.lowStock)...)
	out = append(out, b.Budgets(in.budgets)...)
	out = append(out, b.Settlements(in.settlements)...)
	return out
}

// Generate builds today's notifications for one user. Repeats of the same
// subject within the dedup window are skipped.
func (s *NotificationService) Generate(ctx context.Context, tenantID, userID uuid.UUID) (*GenerateResponse, error) {
	settings, err := s.settings(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	today := shared.Today()
	in, err := s.collect(ctx, tenantID, today, settings.InstallmentDueDays)
	if err != nil {
		return nil, err
	}
	created, err := s.write(ctx, build(*settings, tenantID, today, in))
	if err != nil {
		return nil, err
	}
	return &GenerateResponse{Users: 1, Created: created}, nil
}

// GenerateAll builds today's notifications for every user with settings in the tenant
func (s *NotificationService) GenerateAll(ctx context.Context, tenantID uuid.UUID) (*GenerateResponse, error) {
	all, err := s.repo.FindAllSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	response := &GenerateResponse{}
	if len(all) == 0 {
		return response, nil
	}
	maxDays := 0
	for _, st := range all {
		if st.InstallmentDueDays > maxDays {
			maxDays = st.InstallmentDueDays
		}
	}

	today := shared.Today()
	in, err := s.collect(ctx, tenantID, today, maxDays)
	if err != nil {
		return nil, err
	}
	for _, st := range all {
		created, err := s.write(ctx, build(st, tenantID, today, in))
		if err != nil {
			return response, err
		}
		response.Users++
		response.Created += created
	}
	s.logger.Info("Notification sweep finished",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("users", response.Users),
		zap.Int("created", response.Created),
	)
	return response, nil
}

// List returns a user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, tenantID, userID uuid.UUID, filter notification.Filter) ([]NotificationResponse, int64, error) {
	items, err := s.repo.FindForUser(ctx, tenantID, userID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountForUser(ctx, tenantID, userID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]NotificationResponse, len(items))
	for i := range items {
		out[i] = ToNotificationResponse(&items[i])
	}
	return out, total, nil
}

// MarkRead marks the given notifications read, or all of them when ids is empty
func (s *NotificationService) MarkRead(ctx context.Context, tenantID, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	return s.repo.MarkRead(ctx, tenantID, userID, ids, time.Now())
}

// Summary counts a user's notifications
func (s *NotificationService) Summary(ctx context.Context, tenantID, userID uuid.UUID) (*notification.Summary, error) {
	return s.repo.Summary(ctx, tenantID, userID)
}

func (s *NotificationService) settings(ctx context.Context, tenantID, userID uuid.UUID) (*notification.Settings, error) {
	settings, err := s.repo.FindSettings(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		defaults := notification.DefaultSettings(tenantID, userID)
		settings = &defaults
	}
	return settings, nil
}

// GetSettings returns a user's preferences, the defaults if none were saved
func (s *NotificationService) GetSettings(ctx context.Context, tenantID, userID uuid.UUID) (*SettingsResponse, error) {
	settings, err := s.settings(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	response := ToSettingsResponse(settings)
	return &response, nil
}

// UpdateSettings replaces a user's preferences
func (s *NotificationService) UpdateSettings(ctx context.Context, tenantID, userID uuid.UUID, req SettingsRequest) (*SettingsResponse, error) {
	settings := notification.Settings{
		TenantID:                 tenantID,
		UserID:                   userID,
		NotifyInstallmentDue:     req.NotifyInstallmentDue,
		InstallmentDueDays:       req.InstallmentDueDays,
		NotifyInstallmentOverdue: req.NotifyInstallmentOverdue,
		NotifyLowStock:           req.NotifyLowStock,
		NotifyProjectBudget:      req.NotifyProjectBudget,
		BudgetThresholdPercent:   req.BudgetThresholdPercent,
		NotifySettlements:        req.NotifySettlements,
		EmailNotifications:       req.EmailNotifications,
		UpdatedAt:                time.Now(),
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.SaveSettings(ctx, &settings); err != nil {
		return nil, err
	}
	response := ToSettingsResponse(&settings)
	return &response, nil
}

// Cleanup deletes read notifications older than the retention window
func (s *NotificationService) Cleanup(ctx context.Context, tenantID uuid.UUID, retention time.Duration) (int64, error) {
	return s.repo.DeleteReadBefore(ctx, tenantID, time.Now().Add(-retention))
}

// recipients are the users subscribed in the tenant, or the acting user when nobody is
func (s *NotificationService) recipients(ctx context.Context, tenantID uuid.UUID, actor *uuid.UUID) ([]uuid.UUID, error) {
	all, err := s.repo.FindAllSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	users := make([]uuid.UUID, 0, len(all))
	for _, st := range all {
		users = append(users, st.UserID)
	}
	if len(users) == 0 && actor != nil && *actor != uuid.Nil {
		users = append(users, *actor)
	}
	return users, nil
}

// NotifyContractCreated tells subscribed users about a new contract
func (s *NotificationService) NotifyContractCreated(ctx context.Context, tenantID, contractID uuid.UUID, code string, customerID uuid.UUID, actor *uuid.UUID) error {
	users, err := s.recipients(ctx, tenantID, actor)
	if err != nil || len(users) == 0 {
		return err
	}
	customerName := ""
	if customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID); err == nil {
		customerName = customer.Name
	}
	items := make([]*notification.Notification, 0, len(users))
	for _, u := range users {
		n, err := notification.ContractCreated(tenantID, u, contractID, code, customerName)
		if err != nil {
			return err
		}
		items = append(items, n)
	}
	_, err = s.write(ctx, items)
	return err
}

// NotifyPaymentReceived tells subscribed users about a posted receipt
func (s *NotificationService) NotifyPaymentReceived(ctx context.Context, tenantID, voucherID uuid.UUID, number string, amount valueobject.Money, customerID, contractID, actor *uuid.UUID) error {
	users, err := s.recipients(ctx, tenantID, actor)
	if err != nil || len(users) == 0 {
		return err
	}
	customerName := "walk-in customer"
	if customerID != nil {
		if customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, *customerID); err == nil {
			customerName = customer.Name
		}
	}
	contractCode := ""
	if contractID != nil {
		if c, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, *contractID); err == nil {
			contractCode = c.Code
		}
	}
	items := make([]*notification.Notification, 0, len(users))
	for _, u := range users {
		n, err := notification.PaymentReceived(tenantID, u, voucherID, number, amount, customerName, contractCode)
		if err != nil {
			return err
		}
		items = append(items, n)
	}
	_, err = s.write(ctx, items)
	return err
}
