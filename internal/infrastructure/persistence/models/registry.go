package models

// All returns every persistence model in dependency order.
// Tests use it with AutoMigrate; production schemas come from the SQL migrations.
func All() []any {
	return []any{
		&CustomerModel{},
		&SupplierModel{},
		&UnitModel{},
		&PartnerModel{},
		&PartnersGroupModel{},
		&PartnersGroupMemberModel{},
		&ContractModel{},
		&InstallmentModel{},
		&SafeModel{},
		&ReceiptVoucherModel{},
		&PaymentVoucherModel{},
		&VoucherSequenceModel{},
		&InstallmentPaymentModel{},
		&ShareEntryModel{},
		&SettlementRunModel{},
		&SettlementModel{},
		&ProjectModel{},
		&ItemModel{},
		&StockMoveModel{},
		&NotificationModel{},
		&NotificationSettingsModel{},
	}
}
