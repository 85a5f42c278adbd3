package repair

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dujiao-next/backupsync/internal/constants"
	"github.com/dujiao-next/backupsync/internal/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

var orderSchema = NewSchema(append([]Rule{
	{"_id", "objectid"},
	{"status", enumTag(constants.OrderStatuses)},
	{"orderNumber", "text"},
	{"orderSource", enumTag(constants.OrderSources)},
	{"fulfillmentType", enumTag(constants.FulfillmentTypes)},
	{"items", "filled"},
	{"shippingAddress", "object"},
	{"paymentMethod", enumTag(constants.PaymentMethods)},
	{"paymentStatus", enumTag(constants.PaymentStatuses)},
	{"shippingFee", "nonneg"},
	{"discount", "nonneg"},
	{"promotionDiscount", "nonneg"},
	{"pointsUsed", "nonneg"},
	{"statusHistory", "filled"},
	{"statusStageHistory", "filled"},
}, timestampRules()...)...)

var orderItemSchema = NewSchema(
	Rule{"variantSku", "text"},
	Rule{"images", "strlist"},
	Rule{"price", "nonneg"},
	Rule{"quantity", "posint"},
	Rule{"originalPrice", "nonneg"},
)

var shippingAddressSchema = NewSchema(
	Rule{"fullName", "text"},
	Rule{"phoneNumber", "vnphone"},
	Rule{"province", "text"},
	Rule{"district", "text"},
	Rule{"ward", "text"},
	Rule{"detailAddress", "text"},
)

const promotionName = "Khuyến mãi đồng bộ"

type orderRepairer struct{}

func (orderRepairer) Entity() string { return constants.EntityOrders }

func (orderRepairer) Seed(*Registry, models.Record) {}

func (orderRepairer) Publish(*Registry, models.Record) {}

func (orderRepairer) Repair(env *Env, rec models.Record, index int, t *Tracker) {
	gen := env.Gen
	fx := newFixer(rec, orderSchema, t, "")
	fx.id(gen)
	createdAt := fx.timestamps(gen)
	customerID := repairCustomer(env, fx)

	status := fx.enum("status", constants.OrderStatuses, constants.OrderStatusPending)
	stage := constants.OrderStageOf(status)
	fx.setIfDiffers("statusStage", stage)
	if fx.invalid("orderNumber") {
		fx.set("orderNumber", orderNumber(createdAt, index))
	}

	source := fx.enum("orderSource", constants.OrderSources, constants.OrderSourceOnline)
	defaultFulfillment := constants.FulfillmentHomeDelivery
	defaultPayment := constants.PaymentMethodCOD
	if source == constants.OrderSourceInStore {
		defaultFulfillment = constants.FulfillmentInStore
		defaultPayment = constants.PaymentMethodCash
	}
	fx.enum("fulfillmentType", constants.FulfillmentTypes, defaultFulfillment)
	if source == constants.OrderSourceInStore {
		fx.setIfDiffers("fulfillmentType", constants.FulfillmentInStore)
	}

	subtotal := repairItems(env, fx)
	repairShippingAddress(env, fx, customerID)

	fx.enum("paymentMethod", constants.PaymentMethods, defaultPayment)
	fx.enum("paymentStatus", constants.PaymentStatuses, constants.PaymentStatusPending)

	zero := func() float64 { return 0 }
	shippingFee := fx.money("shippingFee", zero)
	discount := fx.money("discount", zero)
	promotionDiscount := fx.money("promotionDiscount", zero)
	fx.money("pointsUsed", zero)

	if !rec.Has("appliedPromotion") {
		fx.set("appliedPromotion", newPromotion(env, promotionDiscount))
	}

	total := subtotal.Add(shippingFee.Decimal).Sub(discount.Decimal).Sub(promotionDiscount.Decimal)
	if total.IsNegative() {
		total = decimal.Zero
	}
	orderSubtotal := models.NewMoneyFromDecimal(subtotal)
	orderTotal := models.NewMoneyFromDecimal(total)
	if !orderSubtotal.SameAs(rec["subtotal"]) {
		fx.set("subtotal", orderSubtotal.Float64())
	}
	if !orderTotal.SameAs(rec["total"]) {
		fx.set("total", orderTotal.Float64())
	}
	if !orderTotal.SameAs(rec["totalAmount"]) {
		fx.set("totalAmount", orderTotal.Float64())
	}

	updatedAt, _ := rec.Text("updatedAt")
	if fx.invalid("statusHistory") {
		fx.set("statusHistory", []interface{}{map[string]interface{}{
			"status":    status,
			"note":      constants.SyncHistoryNote,
			"updatedAt": updatedAt,
			"updatedBy": constants.SyncActor,
		}})
	}
	if fx.invalid("statusStageHistory") {
		fx.set("statusStageHistory", []interface{}{map[string]interface{}{
			"stage":     stage,
			"note":      constants.SyncHistoryNote,
			"updatedAt": updatedAt,
		}})
	}
}

// repairCustomer 保持 customerId 与 userId 一致，返回最终的客户标识
func repairCustomer(env *Env, fx *fixer) string {
	reg := env.Registry
	resolve := func(field string) (string, bool) {
		id, ok := extractID(fx.rec[field])
		return id, ok && reg.Valid(PoolAccounts, id)
	}
	customerID, customerOK := resolve("customerId")
	userID, userOK := resolve("userId")

	var id string
	switch {
	case customerOK:
		id = customerID
	case userOK:
		id = userID
	case reg.Len(PoolCustomers) > 0:
		id = reg.Pick(PoolCustomers, env.Gen)
	default:
		id = reg.Pick(PoolAccounts, env.Gen)
	}
	fx.setIfDiffers("customerId", id)
	fx.setIfDiffers("userId", id)
	return id
}

// orderNumber 生成订单号：ORD + YYMMDD + 4 位序号
func orderNumber(createdAt time.Time, index int) string {
	return fmt.Sprintf("ORD%s%04d", createdAt.UTC().Format("060102"), (index+1)%10000)
}

// repairItems 修复订单项并返回订单项小计之和
func repairItems(env *Env, fx *fixer) decimal.Decimal {
	if fx.invalid("items") {
		fx.set("items", []interface{}{map[string]interface{}{}})
	}
	list := fx.rec["items"].([]interface{})
	sum := decimal.Zero
	for i, raw := range list {
		item, ok := models.AsRecord(raw)
		if !ok {
			item = models.Record{}
			list[i] = map[string]interface{}(item)
			fx.t.Fix("items")
		}
		sum = sum.Add(repairItem(env, item, fx.t).Decimal)
	}
	return sum
}

func repairItem(env *Env, item models.Record, t *Tracker) models.Money {
	gen := env.Gen
	reg := env.Registry
	ifx := newFixer(item, orderItemSchema, t, "items.")

	productID := ifx.ref("productId", PoolProducts, reg, gen)
	product, _ := reg.Product(productID)
	repairVariantRef(ifx, product, reg, gen)
	ifx.text("variantSku", gen.SKU)

	productName, hasProductName := item.Text("productName")
	name, hasName := item.Text("name")
	switch {
	case hasProductName && !hasName:
		ifx.set("name", productName)
	case hasName && !hasProductName:
		ifx.set("productName", name)
	case !hasName && !hasProductName:
		synthesized := product.Name
		if synthesized == "" {
			synthesized = gen.ProductName()
		}
		ifx.set("productName", synthesized)
		ifx.set("name", synthesized)
	}

	if ifx.invalid("images") {
		images := stringList(item["images"])
		if len(images) == 0 {
			image := product.Image
			if image == "" {
				image = constants.PlaceholderProductImage
			}
			images = []interface{}{image}
		}
		ifx.set("images", images)
	}

	price := ifx.money("price", gen.Price)
	quantity := cast.ToFloat64(item["quantity"])
	if ifx.invalid("quantity") {
		n, ok := toNumber(item["quantity"])
		quantity = math.Round(n)
		if !ok || quantity < 1 {
			quantity = 1
		}
		ifx.set("quantity", quantity)
	}
	ifx.money("originalPrice", price.Float64)

	subtotal := models.NewMoneyFromDecimal(price.Mul(decimal.NewFromFloat(quantity)))
	if !subtotal.SameAs(item["subtotal"]) {
		ifx.set("subtotal", subtotal.Float64())
	}
	if !subtotal.SameAs(item["total"]) {
		ifx.set("total", subtotal.Float64())
	}
	return subtotal
}

// repairVariantRef 变体优先取所选商品的变体，其次取变体池
func repairVariantRef(ifx *fixer, product ProductProfile, reg *Registry, gen *Generator) {
	id, ok := extractID(ifx.rec["variantId"])
	if ok && len(product.Variants) > 0 {
		for _, v := range product.Variants {
			if v == id {
				ifx.setIfDiffers("variantId", id)
				return
			}
		}
		ifx.set("variantId", gen.Pick(product.Variants))
		return
	}
	if ok && reg.Valid(PoolVariants, id) {
		ifx.setIfDiffers("variantId", id)
		return
	}
	if len(product.Variants) > 0 {
		ifx.set("variantId", gen.Pick(product.Variants))
		return
	}
	ifx.set("variantId", reg.Pick(PoolVariants, gen))
}

// repairShippingAddress 修复收货地址，姓名 / 电话 / 省份优先取客户资料
func repairShippingAddress(env *Env, fx *fixer, customerID string) {
	gen := env.Gen
	addr, ok := fx.rec.Object("shippingAddress")
	if !ok || fx.invalid("shippingAddress") {
		addr = models.Record{}
		fx.set("shippingAddress", map[string]interface{}(addr))
	}
	profile, _ := env.Registry.Account(customerID)
	or := func(value string, fallback func() string) func() string {
		return func() string {
			if strings.TrimSpace(value) != "" {
				return value
			}
			return fallback()
		}
	}
	afx := newFixer(addr, shippingAddressSchema, fx.t, "shippingAddress.")
	afx.text("fullName", or(profile.FullName, gen.FullName))
	afx.phone("phoneNumber", or(profile.PhoneNumber, gen.Phone))
	afx.text("province", or(profile.Province, gen.Province))
	afx.text("district", gen.District)
	afx.text("ward", gen.Ward)
	afx.text("detailAddress", gen.DetailAddress)
}

// newPromotion 按配置概率生成一条同步促销，否则返回 nil
func newPromotion(env *Env, discount models.Money) interface{} {
	if !env.Gen.Chance(env.Options.PromotionRate) {
		return nil
	}
	return map[string]interface{}{
		"code":           "SYNC" + strings.ToUpper(env.Gen.Code(6)),
		"name":           promotionName,
		"discountAmount": discount.Float64(),
	}
}
