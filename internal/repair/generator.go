package repair

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	familyNames  = []string{"Nguyễn", "Trần", "Lê", "Phạm", "Hoàng", "Huỳnh", "Phan", "Vũ", "Võ", "Đặng", "Bùi", "Đỗ"}
	middleNames  = []string{"Văn", "Thị", "Minh", "Ngọc", "Thanh", "Quốc", "Gia", "Hữu", "Thu", "Anh"}
	givenNames   = []string{"An", "Bình", "Châu", "Dũng", "Giang", "Hà", "Hải", "Hùng", "Khoa", "Lan", "Linh", "Long", "Mai", "Nam", "Phúc", "Quân", "Tâm", "Trang", "Tuấn", "Vy"}
	provinces    = []string{"Hà Nội", "TP. Hồ Chí Minh", "Đà Nẵng", "Hải Phòng", "Cần Thơ", "Bình Dương", "Đồng Nai", "Khánh Hòa", "Thừa Thiên Huế", "Quảng Ninh"}
	districts    = []string{"Quận 1", "Quận 3", "Quận 7", "Ba Đình", "Cầu Giấy", "Hải Châu", "Ninh Kiều", "Thủ Đức", "Hoàn Kiếm", "Lê Chân"}
	wards        = []string{"Phường Bến Nghé", "Phường Đa Kao", "Phường Tân Phong", "Phường Dịch Vọng", "Phường Thạch Thang", "Phường An Hòa", "Phường Tràng Tiền", "Phường 12"}
	streets      = []string{"Lê Lợi", "Nguyễn Huệ", "Trần Hưng Đạo", "Hai Bà Trưng", "Lý Thường Kiệt", "Điện Biên Phủ", "Võ Văn Tần", "Phan Chu Trinh"}
	brandNames   = []string{"Apple", "Samsung", "Xiaomi", "OPPO", "Sony", "Asus", "Lenovo", "Dell", "JBL", "Anker"}
	productNames = []string{"iPhone 15 Pro", "Galaxy S24", "Redmi Note 13", "MacBook Air M3", "iPad Air", "AirPods Pro", "Galaxy Watch 6", "Xperia 10 V", "ZenBook 14", "Tai nghe Bluetooth"}
	colors       = []string{"Đen", "Trắng", "Xanh dương", "Titan tự nhiên", "Hồng", "Xám"}
	warranties   = []string{"6 tháng", "12 tháng", "18 tháng", "24 tháng"}
	phonePrefix  = []string{"3", "5", "7", "8", "9"}
)

const alnum = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"

// Generator 可注入、可设定种子的随机数据源，用于合成占位值
type Generator struct {
	rnd *rand.Rand
	now func() time.Time
}

// NewGenerator 创建随机数据源；相同 seed 与时钟产生相同序列
func NewGenerator(seed int64, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{
		rnd: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
		now: now,
	}
}

// Now 当前时间（来自注入的时钟）
func (g *Generator) Now() time.Time {
	return g.now()
}

// IntN 返回 [0, n) 的随机整数
func (g *Generator) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return g.rnd.IntN(n)
}

// Chance 以概率 p 返回 true
func (g *Generator) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	return g.rnd.Float64() < p
}

// Pick 从列表中随机取一个值
func (g *Generator) Pick(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[g.rnd.IntN(len(list))]
}

// ObjectID 生成 24 位小写十六进制标识（前 4 字节为当前时间戳）
func (g *Generator) ObjectID() string {
	var id primitive.ObjectID
	binary.BigEndian.PutUint32(id[0:4], uint32(g.now().Unix()))
	binary.BigEndian.PutUint64(id[4:12], g.rnd.Uint64())
	return id.Hex()
}

// FullName 随机越南姓名
func (g *Generator) FullName() string {
	return g.Pick(familyNames) + " " + g.Pick(middleNames) + " " + g.Pick(givenNames)
}

// Phone 随机手机号（0 + 9 位数字）
func (g *Generator) Phone() string {
	var b strings.Builder
	b.WriteString("0")
	b.WriteString(g.Pick(phonePrefix))
	for i := 0; i < 8; i++ {
		b.WriteByte(byte('0' + g.rnd.IntN(10)))
	}
	return b.String()
}

func (g *Generator) Province() string { return g.Pick(provinces) }

func (g *Generator) District() string { return g.Pick(districts) }

func (g *Generator) Ward() string { return g.Pick(wards) }

// DetailAddress 随机门牌与街道
func (g *Generator) DetailAddress() string {
	return fmt.Sprintf("%d %s", 1+g.rnd.IntN(299), g.Pick(streets))
}

func (g *Generator) BrandName() string { return g.Pick(brandNames) }

func (g *Generator) ProductName() string { return g.Pick(productNames) }

func (g *Generator) Color() string { return g.Pick(colors) }

func (g *Generator) Warranty() string { return g.Pick(warranties) }

// Price 随机价格（10,000 的整数倍，100,000 ~ 30,000,000）
func (g *Generator) Price() float64 {
	return float64(10+g.rnd.IntN(2991)) * 10000
}

// Quantity 随机购买数量 1 ~ 3
func (g *Generator) Quantity() float64 {
	return float64(1 + g.rnd.IntN(3))
}

// Code 随机字母数字串
func (g *Generator) Code(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alnum[g.rnd.IntN(len(alnum))]
	}
	return string(b)
}

// SKU 随机 SKU 编码
func (g *Generator) SKU() string {
	return "SKU-" + strings.ToUpper(g.Code(8))
}

// PastTime 过去一年内的随机时间（秒级）
func (g *Generator) PastTime() time.Time {
	offset := time.Duration(g.rnd.Int64N(int64(365*24*time.Hour/time.Second))) * time.Second
	return g.now().Add(-offset).UTC().Truncate(time.Second)
}
