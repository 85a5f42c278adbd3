package constants

// 快照实体类型
const (
	EntityAccounts     = "users"
	EntityBrands       = "brands"
	EntityProductTypes = "producttypes"
	EntityProducts     = "universalproducts"
	EntityOrders       = "orders"
)

// EntityOrder 修复顺序（后者依赖前者的引用池）
var EntityOrder = []string{
	EntityAccounts,
	EntityBrands,
	EntityProductTypes,
	EntityProducts,
	EntityOrders,
}

// EntityFile 返回实体对应的快照文件名
func EntityFile(entity string) string {
	return entity + ".json"
}

// 账号角色常量
const (
	RoleCustomer         = "CUSTOMER"
	RoleAdmin            = "ADMIN"
	RoleStoreManager     = "STORE_MANAGER"
	RoleWarehouseManager = "WAREHOUSE_MANAGER"
	RoleProductManager   = "PRODUCT_MANAGER"
	RoleOrderManager     = "ORDER_MANAGER"
	RolePOSStaff         = "POS_STAFF"
	RoleCashier          = "CASHIER"
	RoleShipper          = "SHIPPER"
	RoleAccountant       = "ACCOUNTANT"
)

// AccountRoles 账号角色取值范围
var AccountRoles = []string{
	RoleCustomer,
	RoleAdmin,
	RoleStoreManager,
	RoleWarehouseManager,
	RoleProductManager,
	RoleOrderManager,
	RolePOSStaff,
	RoleCashier,
	RoleShipper,
	RoleAccountant,
}

// 账号状态常量
const (
	AccountStatusActive = "ACTIVE"
	AccountStatusLocked = "LOCKED"
)

var AccountStatuses = []string{AccountStatusActive, AccountStatusLocked}

// 品牌 / 商品类型状态常量
const (
	CatalogStatusActive   = "ACTIVE"
	CatalogStatusInactive = "INACTIVE"
)

var CatalogStatuses = []string{CatalogStatusActive, CatalogStatusInactive}

// 规格字段类型常量
const (
	SpecFieldText     = "text"
	SpecFieldNumber   = "number"
	SpecFieldSelect   = "select"
	SpecFieldTextarea = "textarea"
)

var SpecFieldTypes = []string{SpecFieldText, SpecFieldNumber, SpecFieldSelect, SpecFieldTextarea}

// DefaultSelectOptions select 字段缺省选项
var DefaultSelectOptions = []string{"Option A", "Option B", "Option C"}

// 商品成色常量
const (
	ProductConditionNew     = "NEW"
	ProductConditionLikeNew = "LIKE_NEW"
	ProductConditionUsed    = "USED"
)

var ProductConditions = []string{ProductConditionNew, ProductConditionLikeNew, ProductConditionUsed}

// 商品状态常量
const (
	ProductStatusAvailable    = "AVAILABLE"
	ProductStatusOutOfStock   = "OUT_OF_STOCK"
	ProductStatusDiscontinued = "DISCONTINUED"
	ProductStatusPreOrder     = "PRE_ORDER"
)

var ProductStatuses = []string{
	ProductStatusAvailable,
	ProductStatusOutOfStock,
	ProductStatusDiscontinued,
	ProductStatusPreOrder,
}

// 分期徽章常量
const (
	InstallmentBadgeNone        = "NONE"
	InstallmentBadgeZeroPercent = "ZERO_PERCENT"
	InstallmentBadgeStandard    = "STANDARD"
)

var InstallmentBadges = []string{InstallmentBadgeNone, InstallmentBadgeZeroPercent, InstallmentBadgeStandard}

// 订单状态常量
const (
	OrderStatusPending           = "PENDING"
	OrderStatusPendingPayment    = "PENDING_PAYMENT"
	OrderStatusPaymentFailed     = "PAYMENT_FAILED"
	OrderStatusPaymentVerified   = "PAYMENT_VERIFIED"
	OrderStatusConfirmed         = "CONFIRMED"
	OrderStatusProcessing        = "PROCESSING"
	OrderStatusPreparing         = "PREPARING"
	OrderStatusPicking           = "PICKING"
	OrderStatusPickupCompleted   = "PICKUP_COMPLETED"
	OrderStatusReadyForPickup    = "READY_FOR_PICKUP"
	OrderStatusPreparingShipment = "PREPARING_SHIPMENT"
	OrderStatusShipping          = "SHIPPING"
	OrderStatusInTransit         = "IN_TRANSIT"
	OrderStatusOutForDelivery    = "OUT_FOR_DELIVERY"
	OrderStatusDelivered         = "DELIVERED"
	OrderStatusDeliveryFailed    = "DELIVERY_FAILED"
	OrderStatusCompleted         = "COMPLETED"
	OrderStatusCancelled         = "CANCELLED"
	OrderStatusReturned          = "RETURNED"
)

var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusPendingPayment,
	OrderStatusPaymentFailed,
	OrderStatusPaymentVerified,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusPreparing,
	OrderStatusPicking,
	OrderStatusPickupCompleted,
	OrderStatusReadyForPickup,
	OrderStatusPreparingShipment,
	OrderStatusShipping,
	OrderStatusInTransit,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusDeliveryFailed,
	OrderStatusCompleted,
	OrderStatusCancelled,
	OrderStatusReturned,
}

// 订单阶段常量（面向展示的粗粒度生命周期）
const (
	OrderStagePending         = "PENDING"
	OrderStagePendingPayment  = "PENDING_PAYMENT"
	OrderStagePaymentFailed   = "PAYMENT_FAILED"
	OrderStageConfirmed       = "CONFIRMED"
	OrderStagePicking         = "PICKING"
	OrderStagePickupCompleted = "PICKUP_COMPLETED"
	OrderStageInTransit       = "IN_TRANSIT"
	OrderStageDelivered       = "DELIVERED"
	OrderStageCancelled       = "CANCELLED"
	OrderStageReturned        = "RETURNED"
)

var orderStatusStages = map[string]string{
	OrderStatusPending:           OrderStagePending,
	OrderStatusPendingPayment:    OrderStagePendingPayment,
	OrderStatusPaymentFailed:     OrderStagePaymentFailed,
	OrderStatusPaymentVerified:   OrderStageConfirmed,
	OrderStatusConfirmed:         OrderStageConfirmed,
	OrderStatusProcessing:        OrderStageConfirmed,
	OrderStatusPreparing:         OrderStagePicking,
	OrderStatusPicking:           OrderStagePicking,
	OrderStatusPickupCompleted:   OrderStagePickupCompleted,
	OrderStatusReadyForPickup:    OrderStagePickupCompleted,
	OrderStatusPreparingShipment: OrderStagePickupCompleted,
	OrderStatusShipping:          OrderStageInTransit,
	OrderStatusInTransit:         OrderStageInTransit,
	OrderStatusOutForDelivery:    OrderStageInTransit,
	OrderStatusDelivered:         OrderStageDelivered,
	OrderStatusCompleted:         OrderStageDelivered,
	OrderStatusDeliveryFailed:    OrderStageReturned,
	OrderStatusCancelled:         OrderStageCancelled,
	OrderStatusReturned:          OrderStageReturned,
}

// OrderStageOf 按固定映射表返回订单状态对应的阶段，未知状态返回 PENDING
func OrderStageOf(status string) string {
	if stage, ok := orderStatusStages[status]; ok {
		return stage
	}
	return OrderStagePending
}

// 订单来源与履约方式常量
const (
	OrderSourceOnline  = "ONLINE"
	OrderSourceInStore = "IN_STORE"

	FulfillmentHomeDelivery    = "HOME_DELIVERY"
	FulfillmentClickAndCollect = "CLICK_AND_COLLECT"
	FulfillmentInStore         = "IN_STORE"
)

var OrderSources = []string{OrderSourceOnline, OrderSourceInStore}

var FulfillmentTypes = []string{FulfillmentHomeDelivery, FulfillmentClickAndCollect, FulfillmentInStore}

// 支付方式常量
const (
	PaymentMethodCOD          = "COD"
	PaymentMethodBankTransfer = "BANK_TRANSFER"
	PaymentMethodVNPay        = "VNPAY"
	PaymentMethodMomo         = "MOMO"
	PaymentMethodCash         = "CASH"
	PaymentMethodCard         = "CARD"
	PaymentMethodInstallment  = "INSTALLMENT"
)

var PaymentMethods = []string{
	PaymentMethodCOD,
	PaymentMethodBankTransfer,
	PaymentMethodVNPay,
	PaymentMethodMomo,
	PaymentMethodCash,
	PaymentMethodCard,
	PaymentMethodInstallment,
}

// 支付状态常量
const (
	PaymentStatusPending  = "PENDING"
	PaymentStatusPaid     = "PAID"
	PaymentStatusFailed   = "FAILED"
	PaymentStatusRefunded = "REFUNDED"
)

var PaymentStatuses = []string{PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded}

// 占位资源
const (
	PlaceholderProductImage = "https://placehold.co/600x600?text=Product"
	SyncHistoryNote         = "Synced from legacy backup"
	SyncActor               = "SYSTEM"
)

// 同步运行模式
const (
	SyncModeNew     = "new"
	SyncModeInPlace = "in_place"
	SyncModeDryRun  = "dry_run"
)
