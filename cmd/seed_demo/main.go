package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xelth-com/brokerledger/internal/config"
	"github.com/xelth-com/brokerledger/internal/database"
	"github.com/xelth-com/brokerledger/internal/logger"
	"github.com/xelth-com/brokerledger/internal/models"
	"github.com/xelth-com/brokerledger/internal/store"
	"github.com/xelth-com/brokerledger/internal/tasks"
	"github.com/xelth-com/brokerledger/internal/unitmaster"
)

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "❌ "+format+"\n", args...)
	os.Exit(1)
}

func f(v float64) *float64 { return &v }

func main() {
	fmt.Println("🌱 Brokerage Ledger Demo Data Seeder")
	fmt.Println(strings.Repeat("=", 60))

	cfg, err := config.Load()
	if err != nil {
		fail("Failed to load config: %v", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fail("Failed to init logger: %v", err)
	}

	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		fail("Failed to connect to database: %v", err)
	}
	defer db.Close()
	fmt.Println("✅ Connected to database")

	ctx := context.Background()
	st := store.New(db.DB, log)
	if err := st.Migrate(ctx); err != nil {
		fail("Migration failed: %v", err)
	}
	fmt.Println("✅ Migrations complete")
	fmt.Println()

	var count int64
	db.Model(&models.Property{}).Unscoped().Count(&count)
	if count > 0 {
		fmt.Printf("⚠️  Database already has %d properties. Clear it first? (y/N): ", count)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("❌ Aborted. Database not modified.")
			return
		}
		for _, table := range []string{"tasks", "viewings", "photos", "customer_requests", "properties", "audit_log"} {
			if err := db.Exec("DELETE FROM " + table).Error; err != nil {
				fail("Failed to clear %s: %v", table, err)
			}
		}
		fmt.Println("✅ Data cleared")
	}

	layouts := unitmaster.NewRegistry(cfg.Layouts.Sources, cfg.Layouts.CacheTTL)

	fmt.Println("🏠 Creating properties...")
	properties := []models.Property{
		{
			Tag: models.TagComplexXi, Dong: "101", Ho: "1203", Floor: "12", UnitType: "84A",
			Area: f(84), Pyeong: f(25), Condition: "상", View: "공원뷰", Orientation: "남향",
			DealSale: true, PriceSaleEok: 5, PriceSaleChe: 2,
		},
		{
			Tag: models.TagComplexHills, Dong: "203", Ho: "502", Floor: "5",
			Area: f(59), Pyeong: f(18), Condition: "중",
			DealJeonse: true, PriceJeonseEok: 3, PriceJeonseChe: 1,
			DealWolse: true, WolseDepositChe: 3, WolseRentMan: 120,
		},
		{
			Tag: models.TagShop, AddressDetail: "봉담읍 상가 1층 105호", Floor: "1",
			Area: f(42), DealWolse: true, WolseDepositChe: 5, WolseRentMan: 250,
			SpecialNotes: "코너 자리",
		},
		{
			Tag: models.TagHouse, AddressDetail: "봉담읍 동화리",
			DealSale: true, PriceSaleEok: 6,
		},
	}
	for i := range properties {
		p := &properties[i]
		if err := layouts.FillProperty(p); err != nil {
			fmt.Printf("   ⚠️  layout lookup failed for %s: %v\n", p.Tag, err)
		}
		if err := st.AddProperty(ctx, p); err != nil {
			fail("Failed to create property: %v", err)
		}
		fmt.Printf("   ✓ %s\n", p.Label())
	}

	fmt.Println("📷 Adding photos...")
	for _, tag := range []string{"거실", "안방", "주방"} {
		photo := models.Photo{PropertyID: properties[0].ID, FilePath: fmt.Sprintf("photos/%d/%s.jpg", properties[0].ID, tag), Tag: tag}
		if err := st.AddPhoto(ctx, &photo); err != nil {
			fail("Failed to add photo: %v", err)
		}
	}

	fmt.Println("👤 Creating customers...")
	customers := []models.Customer{
		{
			CustomerName: "김민수", Phone: "010-1234-5678", DealType: "매매",
			PreferredArea: "80~90", PreferredPyeong: "24~26", Budget10m: 60,
			FloorPreference: "고", ViewPreference: "공원",
		},
		{
			CustomerName: "이영희", Phone: "010-9876-5432", DealType: "전세,월세",
			SizeValue: "18", SizeUnit: models.SizeUnitPyeong,
			WolseDeposit10m: 3, WolseRent10man: 15,
		},
	}
	for i := range customers {
		if err := st.AddCustomer(ctx, &customers[i]); err != nil {
			fail("Failed to create customer: %v", err)
		}
		fmt.Printf("   ✓ %s\n", customers[i].CustomerName)
	}

	fmt.Println("📅 Scheduling viewings...")
	loc := cfg.Location()
	now := time.Now().In(loc)
	customerID := customers[0].ID
	viewings := []models.Viewing{
		{
			PropertyID: properties[0].ID, CustomerID: &customerID, Title: "김민수 101동 방문",
			StartAt: now.Add(3 * time.Hour).Format(tasks.DueLayout),
			EndAt:   now.Add(4 * time.Hour).Format(tasks.DueLayout),
		},
		{
			PropertyID: properties[1].ID, Title: "힐스 203동 현장",
			StartAt: now.Add(-26 * time.Hour).Format(tasks.DueLayout),
			EndAt:   now.Add(-25 * time.Hour).Format(tasks.DueLayout),
		},
	}
	for i := range viewings {
		if err := st.AddViewing(ctx, &viewings[i]); err != nil {
			fail("Failed to create viewing: %v", err)
		}
	}

	fmt.Println("🔄 Reconciling auto tasks...")
	reconciler := tasks.NewReconciler(st, tasks.NewEvaluator(layouts, loc), log)
	open, err := reconciler.Reconcile(ctx)
	if err != nil {
		fmt.Printf("   ⚠️  reconciliation finished with errors: %v\n", err)
	}

	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("✅ Seeded %d properties, %d customers, %d viewings; %d open auto tasks\n",
		len(properties), len(customers), len(viewings), open)
}
