package repair

import (
	"github.com/dujiao-next/backupsync/internal/constants"
	"github.com/dujiao-next/backupsync/internal/models"
)

var accountSchema = NewSchema(append([]Rule{
	{"_id", "objectid"},
	{"role", enumTag(constants.AccountRoles)},
	{"fullName", "text"},
	{"phoneNumber", "vnphone"},
	{"province", "text"},
	{"password", "secret"},
	{"status", enumTag(constants.AccountStatuses)},
	{"addresses", "filled"},
}, timestampRules()...)...)

var addressSchema = NewSchema(
	Rule{"fullName", "text"},
	Rule{"phoneNumber", "vnphone"},
	Rule{"province", "text"},
	Rule{"ward", "text"},
	Rule{"detailAddress", "text"},
	Rule{"isDefault", "flag"},
)

type accountRepairer struct{}

func (accountRepairer) Entity() string { return constants.EntityAccounts }

func (accountRepairer) Seed(reg *Registry, rec models.Record) {
	id, ok := extractID(rec["_id"])
	if !ok {
		return
	}
	reg.Add(PoolAccounts, id)
	if role, ok := matchEnum(rec["role"], constants.AccountRoles); ok && role == constants.RoleCustomer {
		reg.Add(PoolCustomers, id)
	}
}

func (accountRepairer) Repair(env *Env, rec models.Record, _ int, t *Tracker) {
	gen := env.Gen
	fx := newFixer(rec, accountSchema, t, "")
	fx.id(gen)
	fx.enum("role", constants.AccountRoles, constants.RoleCustomer)
	owner := AccountProfile{
		FullName:    fx.text("fullName", gen.FullName),
		PhoneNumber: fx.phone("phoneNumber", gen.Phone),
		Province:    fx.text("province", gen.Province),
	}
	if fx.invalid("password") {
		fx.set("password", env.hashSecret())
	}
	fx.enum("status", constants.AccountStatuses, constants.AccountStatusActive)
	repairAddresses(env, fx, owner)
	fx.timestamps(gen)
}

// repairAddresses 修复地址簿：缺失时用账号自身资料生成一条默认地址
func repairAddresses(env *Env, fx *fixer, owner AccountProfile) {
	gen := env.Gen
	newAddress := func(isDefault bool) map[string]interface{} {
		return map[string]interface{}{
			"fullName":      owner.FullName,
			"phoneNumber":   owner.PhoneNumber,
			"province":      owner.Province,
			"ward":          gen.Ward(),
			"detailAddress": gen.DetailAddress(),
			"isDefault":     isDefault,
		}
	}

	if fx.invalid("addresses") {
		fx.set("addresses", []interface{}{newAddress(true)})
		return
	}

	list := fx.rec["addresses"].([]interface{})
	hasDefault := false
	for i, item := range list {
		addr, ok := models.AsRecord(item)
		if !ok {
			list[i] = newAddress(false)
			fx.t.Fix("addresses")
			continue
		}
		afx := newFixer(addr, addressSchema, fx.t, "addresses.")
		afx.text("fullName", func() string { return owner.FullName })
		afx.phone("phoneNumber", func() string { return owner.PhoneNumber })
		afx.text("province", func() string { return owner.Province })
		afx.text("ward", gen.Ward)
		afx.text("detailAddress", gen.DetailAddress)
		if afx.flag("isDefault", false) {
			hasDefault = true
		}
	}
	if !hasDefault {
		first, _ := models.AsRecord(list[0])
		first["isDefault"] = true
		fx.t.Fix("addresses.isDefault")
	}
}

func (accountRepairer) Publish(reg *Registry, rec models.Record) {
	id := idOf(rec)
	reg.Add(PoolAccounts, id)
	if rec["role"] == constants.RoleCustomer {
		reg.Add(PoolCustomers, id)
	}
	profile := AccountProfile{}
	profile.FullName, _ = rec.Text("fullName")
	profile.PhoneNumber, _ = rec.Text("phoneNumber")
	profile.Province, _ = rec.Text("province")
	reg.PutAccount(id, profile)
}
