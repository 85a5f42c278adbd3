package repair

import (
	"encoding/json"
	"math"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/dujiao-next/backupsync/internal/constants"
	"github.com/dujiao-next/backupsync/internal/models"
	"github.com/dujiao-next/backupsync/internal/snapshot"

	"golang.org/x/crypto/bcrypt"
)

var (
	objectIDPattern    = regexp.MustCompile(`^[a-f0-9]{24}$`)
	orderNumberPattern = regexp.MustCompile(`^ORD\d{10}$`)
)

func fixedNow() time.Time {
	return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
}

func testOptions(seed int64) Options {
	return Options{
		Seed:          seed,
		Now:           fixedNow,
		PromotionRate: 0.3,
		PasswordCost:  bcrypt.MinCost,
	}
}

// buildSnapshot 通过 JSON 解码构造快照，保证记录形态与真实加载一致
func buildSnapshot(t *testing.T, collections map[string]string) *snapshot.Snapshot {
	t.Helper()
	snap := &snapshot.Snapshot{Collections: make(map[string][]models.Record)}
	for entity, raw := range collections {
		var list []map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			t.Fatalf("decode %s failed: %v", entity, err)
		}
		records := make([]models.Record, 0, len(list))
		for _, item := range list {
			records = append(records, models.Record(item))
		}
		snap.Collections[entity] = records
	}
	return snap
}

// roundTrip 模拟写出后重新加载
func roundTrip(t *testing.T, snap *snapshot.Snapshot) *snapshot.Snapshot {
	t.Helper()
	collections := make(map[string]string, len(snap.Collections))
	for entity, records := range snap.Collections {
		raw, err := json.Marshal(records)
		if err != nil {
			t.Fatalf("encode %s failed: %v", entity, err)
		}
		collections[entity] = string(raw)
	}
	return buildSnapshot(t, collections)
}

func numberField(t *testing.T, rec models.Record, field string) float64 {
	t.Helper()
	n, ok := rec[field].(float64)
	if !ok {
		t.Fatalf("field %s is not a number: %#v", field, rec[field])
	}
	return n
}

func sampleCollections() map[string]string {
	return map[string]string{
		constants.EntityAccounts: `[
			{"_id":"65a000000000000000000001","role":"customer","fullName":"Nguyễn Văn An","phoneNumber":"+84 912 345 678","province":"Hà Nội","status":"ACTIVE"},
			{"_id":{"$oid":"65A000000000000000000002"},"role":"ADMIN","phoneNumber":912345679},
			{"fullName":"","addresses":[{"fullName":"Lê Thị Mai"},"garbage"]}
		]`,
		constants.EntityBrands: `[
			{"_id":"65b000000000000000000001","name":"Apple Store","createdBy":"ffffffffffffffffffffffff"},
			{"name":"Sam Sung","status":"inactive"}
		]`,
		constants.EntityProductTypes: `[
			{"_id":"65c000000000000000000001","name":"Điện thoại","specFields":[
				{"label":"Dung lượng pin","type":"select","options":[]},
				{"key":"ram","type":"NUMBER","required":"true"},
				42
			]}
		]`,
		constants.EntityProducts: `[
			{"_id":"65d000000000000000000001","name":"iPhone 15 Pro","model":"A3102","brand":"65b000000000000000000001",
			 "productType":{"_id":"65c000000000000000000001","name":"Điện thoại"},
			 "variants":["65e000000000000000000001",{"$oid":"65e000000000000000000002"},"bad"],
			 "featuredImages":["https://cdn.example.com/iphone.png"],"averageRating":"4.5","totalReviews":-3,"salesCount":12.7},
			{"name":"Galaxy S24","specifications":"{\"color\":\"Đen\"}","featuredImages":[]}
		]`,
		constants.EntityOrders: `[
			{"status":"SHIPPING"},
			{"customerId":"65a000000000000000000001","status":"DELIVERED","statusStage":"PENDING","orderNumber":"ORD2401010001",
			 "createdAt":"2024-01-01T08:00:00.000Z","shippingFee":"30000","discount":10000,"promotionDiscount":5000,
			 "items":[{"productId":"65d000000000000000000001","productName":"iPhone 15 Pro","price":1000000,"quantity":2,"subtotal":1}],
			 "shippingAddress":{"fullName":"Nguyễn Văn An","phoneNumber":"0912345678"},
			 "appliedPromotion":null,"subtotal":5,"total":7,"totalAmount":7},
			{"userId":"65a000000000000000000002","orderSource":"in store","fulfillmentType":"HOME_DELIVERY",
			 "items":[{"name":"Tai nghe","price":50000,"quantity":"3"},"broken"],"discount":999999999}
		]`,
	}
}

func runSample(t *testing.T, seed int64) (*snapshot.Snapshot, *Result) {
	t.Helper()
	snap := buildSnapshot(t, sampleCollections())
	return snap, NewEngine(testOptions(seed)).Run(snap)
}

func TestOrderWithOnlyStatusIsFullyRepaired(t *testing.T) {
	snap := buildSnapshot(t, map[string]string{constants.EntityOrders: `[{"status":"SHIPPING"}]`})
	NewEngine(testOptions(1)).Run(snap)

	order := snap.Records(constants.EntityOrders)[0]
	customerID, _ := order["customerId"].(string)
	if !objectIDPattern.MatchString(customerID) || order["userId"] != customerID {
		t.Fatalf("expected equal customerId/userId, got %#v / %#v", order["customerId"], order["userId"])
	}
	if order["statusStage"] != constants.OrderStageInTransit {
		t.Fatalf("expected IN_TRANSIT stage, got %#v", order["statusStage"])
	}
	items, ok := order["items"].([]interface{})
	if !ok || len(items) != 1 {
		t.Fatalf("expected exactly one item, got %#v", order["items"])
	}
	item, _ := models.AsRecord(items[0])
	if numberField(t, item, "price") <= 0 || numberField(t, item, "quantity") < 1 {
		t.Fatalf("unexpected synthesized item: %#v", item)
	}
	address, ok := order.Object("shippingAddress")
	if !ok {
		t.Fatalf("shippingAddress missing")
	}
	for _, field := range []string{"fullName", "phoneNumber", "province", "district", "ward", "detailAddress"} {
		if _, ok := address.Text(field); !ok {
			t.Fatalf("shippingAddress.%s not populated: %#v", field, address)
		}
	}
	number, _ := order["orderNumber"].(string)
	if !orderNumberPattern.MatchString(number) {
		t.Fatalf("unexpected orderNumber: %q", number)
	}
}

func TestBrandSlugDerivedFromName(t *testing.T) {
	snap, _ := runSample(t, 1)
	brand := snap.Records(constants.EntityBrands)[0]
	if brand["slug"] != "apple-store" {
		t.Fatalf("expected slug apple-store, got %#v", brand["slug"])
	}
	second := snap.Records(constants.EntityBrands)[1]
	if second["slug"] != "sam-sung" || second["status"] != constants.CatalogStatusInactive {
		t.Fatalf("unexpected brand repair: %#v", second)
	}
}

func TestSelectSpecFieldGetsDefaultOptions(t *testing.T) {
	snap, _ := runSample(t, 1)
	fields, _ := snap.Records(constants.EntityProductTypes)[0].List("specFields")
	if len(fields) != 3 {
		t.Fatalf("expected 3 spec fields, got %d", len(fields))
	}
	first, _ := models.AsRecord(fields[0])
	want := []interface{}{"Option A", "Option B", "Option C"}
	if !reflect.DeepEqual(first["options"], want) {
		t.Fatalf("expected default options, got %#v", first["options"])
	}
	if first["key"] != "dung_luong_pin" {
		t.Fatalf("expected key derived from label, got %#v", first["key"])
	}
	second, _ := models.AsRecord(fields[1])
	if second["type"] != constants.SpecFieldNumber || second["required"] != true || second["label"] != "ram" {
		t.Fatalf("unexpected spec field repair: %#v", second)
	}
	third, _ := models.AsRecord(fields[2])
	if third["key"] != "field_3" || third["type"] != constants.SpecFieldText {
		t.Fatalf("unexpected synthesized spec field: %#v", third)
	}
}

func TestSelectSpecFieldDropsUnusableOptions(t *testing.T) {
	collections := sampleCollections()
	collections[constants.EntityProductTypes] = `[
		{"_id":"65c000000000000000000001","name":"Điện thoại","specFields":[
			{"key":"color","label":"Màu","type":"select","options":[1,""]},
			{"key":"size","label":"Cỡ","type":"select","options":[" S ",2,"M"]}
		]}
	]`
	snap := buildSnapshot(t, collections)
	NewEngine(testOptions(3)).Run(snap)

	fields, _ := snap.Records(constants.EntityProductTypes)[0].List("specFields")
	first, _ := models.AsRecord(fields[0])
	if !reflect.DeepEqual(first["options"], defaultSelectOptions()) {
		t.Fatalf("expected default options, got %#v", first["options"])
	}
	second, _ := models.AsRecord(fields[1])
	if !reflect.DeepEqual(second["options"], []interface{}{"S", "M"}) {
		t.Fatalf("expected cleaned options, got %#v", second["options"])
	}
}

func TestOrderItemNameCopiedFromProductName(t *testing.T) {
	snap, _ := runSample(t, 1)
	items, _ := snap.Records(constants.EntityOrders)[1].List("items")
	item, _ := models.AsRecord(items[0])
	if item["name"] != "iPhone 15 Pro" || item["productName"] != "iPhone 15 Pro" {
		t.Fatalf("expected name copied from productName, got %#v", item)
	}
	other, _ := snap.Records(constants.EntityOrders)[2].List("items")
	reverse, _ := models.AsRecord(other[0])
	if reverse["productName"] != "Tai nghe" {
		t.Fatalf("expected productName copied from name, got %#v", reverse)
	}
}

func TestAccountInvariants(t *testing.T) {
	snap, _ := runSample(t, 7)
	phone := regexp.MustCompile(`^0\d{9}$`)
	for i, account := range snap.Records(constants.EntityAccounts) {
		id, _ := account["_id"].(string)
		if !objectIDPattern.MatchString(id) {
			t.Fatalf("account %d: invalid _id %#v", i, account["_id"])
		}
		if _, ok := matchEnum(account["role"], constants.AccountRoles); !ok || account["role"] == "customer" {
			t.Fatalf("account %d: invalid role %#v", i, account["role"])
		}
		if s, _ := account["phoneNumber"].(string); !phone.MatchString(s) {
			t.Fatalf("account %d: invalid phone %#v", i, account["phoneNumber"])
		}
		if account["status"] != constants.AccountStatusActive && account["status"] != constants.AccountStatusLocked {
			t.Fatalf("account %d: invalid status %#v", i, account["status"])
		}
		if list, _ := account.List("addresses"); len(list) < 1 {
			t.Fatalf("account %d: addresses empty", i)
		}
		if s, _ := account["password"].(string); len(s) < 20 {
			t.Fatalf("account %d: password too short", i)
		}
	}

	accounts := snap.Records(constants.EntityAccounts)
	if accounts[0]["phoneNumber"] != "0912345678" || accounts[0]["role"] != constants.RoleCustomer {
		t.Fatalf("expected normalized phone and role, got %#v", accounts[0])
	}
	if accounts[1]["_id"] != "65a000000000000000000002" || accounts[1]["phoneNumber"] != "0912345679" {
		t.Fatalf("expected unwrapped id and numeric phone, got %#v", accounts[1])
	}
	addresses, _ := accounts[2].List("addresses")
	if len(addresses) != 2 {
		t.Fatalf("expected address entries kept, got %#v", addresses)
	}
	first, _ := models.AsRecord(addresses[0])
	if first["fullName"] != "Lê Thị Mai" || first["isDefault"] != true {
		t.Fatalf("expected first address kept and made default, got %#v", first)
	}
}

func TestOrderArithmetic(t *testing.T) {
	snap, _ := runSample(t, 3)
	for i, order := range snap.Records(constants.EntityOrders) {
		items, _ := order.List("items")
		sum := 0.0
		for _, raw := range items {
			item, _ := models.AsRecord(raw)
			subtotal := numberField(t, item, "price") * numberField(t, item, "quantity")
			if numberField(t, item, "subtotal") != subtotal || numberField(t, item, "total") != subtotal {
				t.Fatalf("order %d: item subtotal mismatch %#v", i, item)
			}
			sum += subtotal
		}
		if numberField(t, order, "subtotal") != sum {
			t.Fatalf("order %d: subtotal %v != %v", i, order["subtotal"], sum)
		}
		want := math.Max(0, sum+numberField(t, order, "shippingFee")-numberField(t, order, "discount")-numberField(t, order, "promotionDiscount"))
		if numberField(t, order, "total") != want || numberField(t, order, "totalAmount") != want {
			t.Fatalf("order %d: total %v / %v, want %v", i, order["total"], order["totalAmount"], want)
		}
		status, _ := order["status"].(string)
		if order["statusStage"] != constants.OrderStageOf(status) {
			t.Fatalf("order %d: stage %v does not match status %s", i, order["statusStage"], status)
		}
	}

	second := snap.Records(constants.EntityOrders)[1]
	if numberField(t, second, "total") != 2015000 || second["statusStage"] != constants.OrderStageDelivered {
		t.Fatalf("unexpected totals for second order: %#v", second)
	}
	if second["orderNumber"] != "ORD2401010001" || second["appliedPromotion"] != nil {
		t.Fatalf("existing orderNumber/appliedPromotion must be kept: %#v", second)
	}
	if numberField(t, snap.Records(constants.EntityOrders)[2], "total") != 0 {
		t.Fatalf("expected total clamped to zero")
	}
}

func TestSubCentAmountsAreRoundedBeforeSumming(t *testing.T) {
	collections := sampleCollections()
	collections[constants.EntityOrders] = `[
		{"customerId":"65a000000000000000000001","status":"PENDING","appliedPromotion":null,"shippingFee":0.005,"discount":0,"promotionDiscount":0,
		 "items":[{"productId":"65d000000000000000000001","name":"iPhone 15 Pro","price":0.125,"quantity":3}]}
	]`
	snap := buildSnapshot(t, collections)
	result := NewEngine(testOptions(7)).Run(snap)

	order := snap.Records(constants.EntityOrders)[0]
	items, _ := order.List("items")
	item, _ := models.AsRecord(items[0])
	price := numberField(t, item, "price")
	if price != 0.13 {
		t.Fatalf("expected price rounded to 0.13, got %v", price)
	}
	if numberField(t, item, "subtotal") != 0.39 || numberField(t, order, "subtotal") != 0.39 {
		t.Fatalf("unexpected subtotals: item=%v order=%v", item["subtotal"], order["subtotal"])
	}
	if numberField(t, order, "shippingFee") != 0.01 || numberField(t, order, "total") != 0.4 {
		t.Fatalf("unexpected shippingFee/total: %v / %v", order["shippingFee"], order["total"])
	}
	orders := result.Report.File("orders.json")
	if orders == nil || orders.Fields["items.price"] != 1 || orders.Fields["shippingFee"] != 1 {
		t.Fatalf("expected rounded amounts counted as fixes, got %#v", orders)
	}

	again := NewEngine(testOptions(8)).Run(roundTrip(t, snap))
	if stats := again.Report.File("orders.json"); stats.Changed != 0 {
		t.Fatalf("expected no order changes on second run, got %v", stats.Fields)
	}
}

func TestOrderChannelAndCustomerConsistency(t *testing.T) {
	snap, _ := runSample(t, 5)
	orders := snap.Records(constants.EntityOrders)
	if orders[1]["userId"] != "65a000000000000000000001" {
		t.Fatalf("expected userId to follow customerId, got %#v", orders[1]["userId"])
	}
	inStore := orders[2]
	if inStore["customerId"] != "65a000000000000000000002" || inStore["userId"] != "65a000000000000000000002" {
		t.Fatalf("expected customerId propagated from userId, got %#v", inStore)
	}
	if inStore["orderSource"] != constants.OrderSourceInStore || inStore["fulfillmentType"] != constants.FulfillmentInStore {
		t.Fatalf("expected in-store fulfillment, got %#v / %#v", inStore["orderSource"], inStore["fulfillmentType"])
	}
	if inStore["paymentMethod"] != constants.PaymentMethodCash {
		t.Fatalf("expected CASH default for in-store order, got %#v", inStore["paymentMethod"])
	}
}

func TestStatusStageLookup(t *testing.T) {
	cases := map[string]string{
		constants.OrderStatusShipping:          constants.OrderStageInTransit,
		constants.OrderStatusOutForDelivery:    constants.OrderStageInTransit,
		constants.OrderStatusCompleted:         constants.OrderStageDelivered,
		constants.OrderStatusDeliveryFailed:    constants.OrderStageReturned,
		constants.OrderStatusPaymentVerified:   constants.OrderStageConfirmed,
		constants.OrderStatusPreparing:         constants.OrderStagePicking,
		constants.OrderStatusPreparingShipment: constants.OrderStagePickupCompleted,
		constants.OrderStatusCancelled:         constants.OrderStageCancelled,
	}
	for status, stage := range cases {
		if got := constants.OrderStageOf(status); got != stage {
			t.Fatalf("status %s: expected %s, got %s", status, stage, got)
		}
	}
	if got := constants.OrderStageOf("UNKNOWN"); got != constants.OrderStagePending {
		t.Fatalf("unknown status should map to PENDING, got %s", got)
	}
}

func TestRepairIsIdempotent(t *testing.T) {
	snap, _ := runSample(t, 11)
	again := roundTrip(t, snap)
	result := NewEngine(testOptions(12)).Run(again)
	for _, stats := range result.Report.Files {
		if stats.Changed != 0 {
			t.Fatalf("%s: expected no changes on second run, got %d (%v)", stats.File, stats.Changed, stats.Fields)
		}
	}
}

func TestOrderItemsReferenceProductPool(t *testing.T) {
	snap, result := runSample(t, 13)
	if result.Registry.Len(PoolProducts) == 0 {
		t.Fatalf("expected non-empty product pool")
	}
	for i, order := range snap.Records(constants.EntityOrders) {
		items, _ := order.List("items")
		for _, raw := range items {
			item, _ := models.AsRecord(raw)
			id, _ := item["productId"].(string)
			if !result.Registry.Has(PoolProducts, id) {
				t.Fatalf("order %d: productId %q not in product pool", i, id)
			}
		}
		customerID, _ := order["customerId"].(string)
		if !result.Registry.Has(PoolAccounts, customerID) {
			t.Fatalf("order %d: customerId %q not in account pool", i, customerID)
		}
	}
	product := snap.Records(constants.EntityProducts)[0]
	variants, _ := product.List("variants")
	if len(variants) != 3 || variants[1] != "65e000000000000000000002" || !isObjectID(variants[2]) {
		t.Fatalf("unexpected variants repair: %#v", variants)
	}
	if product["productType"] != "65c000000000000000000001" || product["slug"] != "iphone-15-pro-a3102" {
		t.Fatalf("unexpected product repair: %#v", product)
	}
	if product["averageRating"] != 4.5 || product["totalReviews"] != 0.0 || product["salesCount"] != 13.0 {
		t.Fatalf("unexpected numeric coercion: %#v", product)
	}
	galaxy := snap.Records(constants.EntityProducts)[1]
	if specs, _ := galaxy.Object("specifications"); specs["color"] != "Đen" {
		t.Fatalf("expected specifications decoded from JSON string, got %#v", galaxy["specifications"])
	}
	if images, _ := galaxy.List("featuredImages"); len(images) != 1 || images[0] != constants.PlaceholderProductImage {
		t.Fatalf("expected placeholder image, got %#v", galaxy["featuredImages"])
	}
}

func TestSeededRunsAreDeterministic(t *testing.T) {
	first, _ := runSample(t, 99)
	second, _ := runSample(t, 99)
	a, err := json.Marshal(first.Records(constants.EntityOrders))
	if err != nil {
		t.Fatalf("encode orders failed: %v", err)
	}
	b, err := json.Marshal(second.Records(constants.EntityOrders))
	if err != nil {
		t.Fatalf("encode orders failed: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("expected identical orders for identical seeds")
	}
}

func TestReportCountsChangedRecords(t *testing.T) {
	_, result := runSample(t, 21)
	accounts := result.Report.File("users.json")
	if accounts == nil || accounts.Scanned != 3 || accounts.Changed != 3 {
		t.Fatalf("unexpected account stats: %#v", accounts)
	}
	if accounts.Fields["phoneNumber"] < 2 {
		t.Fatalf("expected phoneNumber fixes counted, got %v", accounts.Fields)
	}
	scanned, _ := result.Report.Totals()
	if scanned != 11 {
		t.Fatalf("expected 11 scanned records, got %d", scanned)
	}
	if len(result.Report.Files) != len(constants.EntityOrder) {
		t.Fatalf("expected one stats entry per entity")
	}
}
