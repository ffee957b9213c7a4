package router

import (
	"github.com/erp/realestate/internal/interfaces/http/handler"
	"github.com/erp/realestate/internal/interfaces/http/middleware"
)

// Handlers holds every handler served under /api/v1
type Handlers struct {
	System       *handler.SystemHandler
	Customer     *handler.CustomerHandler
	Supplier     *handler.SupplierHandler
	Unit         *handler.UnitHandler
	Contract     *handler.ContractHandler
	Installment  *handler.InstallmentHandler
	Safe         *handler.SafeHandler
	Voucher      *handler.VoucherHandler
	Partner      *handler.PartnerHandler
	PartnerGroup *handler.PartnerGroupHandler
	Settlement   *handler.SettlementHandler
	Project      *handler.ProjectHandler
	Item         *handler.ItemHandler
	StockMove    *handler.StockMoveHandler
	Notification *handler.NotificationHandler
	Audit        *handler.AuditHandler
}

// Roles allowed to run the privileged ledger operations
const (
	RoleAdmin      = "admin"
	RoleAccountant = "accountant"
)

// LedgerRoutes builds the domain groups of the ledger API.
// Static segments such as /safes/summary are declared before /:id routes.
func LedgerRoutes(h Handlers) []Registrar {
	privileged := middleware.RequireRole(RoleAdmin, RoleAccountant)

	system := NewGroup("/system").
		GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping).
		GET("/whoami", h.System.Whoami)

	customers := NewGroup("/customers").
		GET("", h.Customer.List).
		POST("", h.Customer.Create).
		GET("/:id", h.Customer.GetByID).
		PUT("/:id", h.Customer.Update).
		DELETE("/:id", h.Customer.Delete)

	suppliers := NewGroup("/suppliers").
		GET("", h.Supplier.List).
		POST("", h.Supplier.Create).
		GET("/:id", h.Supplier.GetByID).
		PUT("/:id", h.Supplier.Update).
		DELETE("/:id", h.Supplier.Delete)

	units := NewGroup("/units").
		GET("", h.Unit.List).
		POST("", h.Unit.Create).
		GET("/:id", h.Unit.GetByID).
		PUT("/:id", h.Unit.Update).
		DELETE("/:id", h.Unit.Delete)

	contracts := NewGroup("/contracts").
		GET("", h.Contract.List).
		POST("", h.Contract.Create).
		GET("/:id", h.Contract.GetByID).
		PUT("/:id", h.Contract.Update).
		DELETE("/:id", h.Contract.Delete).
		GET("/:id/installments", h.Contract.Schedule).
		GET("/:id/summary", h.Contract.Summary).
		GET("/:id/late-fees", h.Contract.LateFees).
		GET("/:id/payments", h.Contract.Payments).
		POST("/:id/reschedule", h.Contract.Reschedule).
		POST("/:id/pay", h.Contract.Pay)

	installments := NewGroup("/installments").
		GET("", h.Installment.List).
		POST("/:id/pay", h.Installment.Pay)

	safes := NewGroup("/safes").
		GET("", h.Safe.List).
		POST("", h.Safe.Create).
		GET("/summary", h.Safe.Summary).
		POST("/transfer", h.Safe.Transfer).
		GET("/:id", h.Safe.GetByID).
		PUT("/:id", h.Safe.Update).
		DELETE("/:id", h.Safe.Delete).
		GET("/:id/balance", h.Safe.Balance).
		GET("/:id/cash-flow", h.Safe.CashFlow)

	receipts := NewGroup("/receipt-vouchers").
		GET("", h.Voucher.ListReceipts).
		POST("", h.Voucher.CreateReceipt).
		GET("/:id", h.Voucher.GetReceipt).
		POST("/:id/cancel", privileged, h.Voucher.CancelReceipt)

	payments := NewGroup("/payment-vouchers").
		GET("", h.Voucher.ListPayments).
		POST("", h.Voucher.CreatePayment).
		GET("/:id", h.Voucher.GetPayment).
		POST("/:id/cancel", privileged, h.Voucher.CancelPayment)

	vouchers := NewGroup("/vouchers").
		GET("/stats", h.Voucher.Stats)

	partners := NewGroup("/partners").
		GET("", h.Partner.List).
		POST("", h.Partner.Create).
		GET("/:id", h.Partner.GetByID).
		PUT("/:id", h.Partner.Update).
		DELETE("/:id", h.Partner.Delete).
		GET("/:id/balance", h.Partner.Balance).
		GET("/:id/share-ledger", h.Partner.ShareLedger).
		GET("/:id/settlement-balance", h.Partner.SettlementBalance).
		GET("/:id/transactions", h.Partner.Transactions)

	groups := NewGroup("/partner-groups").
		GET("", h.PartnerGroup.List).
		POST("", h.PartnerGroup.Create).
		GET("/:id", h.PartnerGroup.GetByID).
		PUT("/:id", h.PartnerGroup.Update).
		DELETE("/:id", h.PartnerGroup.Delete).
		POST("/:id/finalize", h.PartnerGroup.Finalize).
		POST("/:id/reopen", privileged, h.PartnerGroup.Reopen)

	settlements := NewGroup("/settlements").
		GET("", h.Settlement.List).
		POST("", h.Settlement.Create).
		POST("/compute", h.Settlement.Compute).
		GET("/runs", h.Settlement.Runs).
		GET("/runs/:id", h.Settlement.GetRun).
		GET("/:id", h.Settlement.GetByID).
		POST("/:id/execute", privileged, h.Settlement.Execute).
		POST("/:id/cancel", privileged, h.Settlement.Cancel)

	projects := NewGroup("/projects").
		GET("", h.Project.List).
		POST("", h.Project.Create).
		GET("/budgets", h.Project.Budgets).
		GET("/:id", h.Project.GetByID).
		PUT("/:id", h.Project.Update).
		DELETE("/:id", h.Project.Delete).
		GET("/:id/budget", h.Project.Budget)

	items := NewGroup("/items").
		GET("", h.Item.List).
		POST("", h.Item.Create).
		GET("/levels", h.Item.Levels).
		GET("/low-stock", h.Item.LowStock).
		GET("/:id", h.Item.GetByID).
		PUT("/:id", h.Item.Update).
		DELETE("/:id", h.Item.Delete).
		GET("/:id/balance", h.Item.Balance)

	stockMoves := NewGroup("/stock-moves").
		GET("", h.StockMove.List).
		POST("", h.StockMove.Record)

	notifications := NewGroup("/notifications").
		GET("", h.Notification.List).
		POST("/read", h.Notification.MarkRead).
		GET("/summary", h.Notification.Summary).
		GET("/settings", h.Notification.GetSettings).
		PUT("/settings", h.Notification.UpdateSettings).
		POST("/generate", h.Notification.Generate)

	audit := NewGroup("/audit").
		GET("/integrity", privileged, h.Audit.Integrity)

	return []Registrar{
		system, customers, suppliers, units, contracts, installments,
		safes, receipts, payments, vouchers, partners, groups, settlements,
		projects, items, stockMoves, notifications, audit,
	}
}
