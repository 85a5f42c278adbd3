package repair

// 引用池类型
const (
	PoolAccounts     = "accounts"
	PoolCustomers    = "customers"
	PoolBrands       = "brands"
	PoolProductTypes = "productTypes"
	PoolProducts     = "products"
	PoolVariants     = "variants"
)

// AccountProfile 账号资料摘要，用于回填订单收货信息
type AccountProfile struct {
	FullName    string
	PhoneNumber string
	Province    string
}

// ProductProfile 商品资料摘要，用于回填订单项
type ProductProfile struct {
	Name     string
	Image    string
	Variants []string
}

// Registry 各实体的已知标识引用池
//
// 池内顺序即加入顺序，只追加不重写；回填只保证引用有效，不代表真实关联关系。
type Registry struct {
	pools    map[string][]string
	index    map[string]map[string]struct{}
	accounts map[string]AccountProfile
	products map[string]ProductProfile
}

// NewRegistry 创建空引用池
func NewRegistry() *Registry {
	return &Registry{
		pools:    make(map[string][]string),
		index:    make(map[string]map[string]struct{}),
		accounts: make(map[string]AccountProfile),
		products: make(map[string]ProductProfile),
	}
}

// Add 将标识加入引用池（格式非法或重复时忽略）
func (r *Registry) Add(pool, id string) {
	if !isObjectID(id) {
		return
	}
	set, ok := r.index[pool]
	if !ok {
		set = make(map[string]struct{})
		r.index[pool] = set
	}
	if _, exists := set[id]; exists {
		return
	}
	set[id] = struct{}{}
	r.pools[pool] = append(r.pools[pool], id)
}

// Has 标识是否在引用池中
func (r *Registry) Has(pool, id string) bool {
	_, ok := r.index[pool][id]
	return ok
}

// Len 引用池大小
func (r *Registry) Len(pool string) int {
	return len(r.pools[pool])
}

// IDs 返回引用池副本
func (r *Registry) IDs(pool string) []string {
	return append([]string(nil), r.pools[pool]...)
}

// Valid 引用是否可用：池非空时必须是池成员，池为空时只要求格式合法
func (r *Registry) Valid(pool, id string) bool {
	if r.Len(pool) == 0 {
		return isObjectID(id)
	}
	return r.Has(pool, id)
}

// Pick 从池中均匀随机取一个标识；池为空时生成新标识
func (r *Registry) Pick(pool string, gen *Generator) string {
	ids := r.pools[pool]
	if len(ids) == 0 {
		return gen.ObjectID()
	}
	return ids[gen.IntN(len(ids))]
}

// PutAccount 登记账号资料
func (r *Registry) PutAccount(id string, profile AccountProfile) {
	r.accounts[id] = profile
}

// Account 查询账号资料
func (r *Registry) Account(id string) (AccountProfile, bool) {
	profile, ok := r.accounts[id]
	return profile, ok
}

// PutProduct 登记商品资料
func (r *Registry) PutProduct(id string, profile ProductProfile) {
	r.products[id] = profile
}

// Product 查询商品资料
func (r *Registry) Product(id string) (ProductProfile, bool) {
	profile, ok := r.products[id]
	return profile, ok
}
