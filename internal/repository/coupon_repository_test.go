package repository

import (
	"sync"
	"testing"

	"github.com/swadeshika/storefront/internal/constants"
	"github.com/swadeshika/storefront/internal/models"
)

func TestGetByCodeIsCaseInsensitive(t *testing.T) {
	db := openRepositoryTestDB(t, &models.Coupon{})
	repo := NewCouponRepository(db)

	coupon := &models.Coupon{
		Code:      "WELCOME100",
		Type:      constants.CouponTypeFixed,
		Value:     mustMoney(t, "100.00"),
		ScopeType: constants.CouponScopeAll,
		IsActive:  true,
	}
	if err := repo.Create(coupon); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	found, err := repo.GetByCode("welcome100")
	if err != nil {
		t.Fatalf("get by code failed: %v", err)
	}
	if found == nil || found.ID != coupon.ID {
		t.Fatalf("lowercase lookup should find the coupon")
	}

	missing, err := repo.GetByCode("NOPE")
	if err != nil {
		t.Fatalf("get by code failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("unknown code should return nil, got %+v", missing)
	}
}

func TestIncrementUsedCountHonorsLimit(t *testing.T) {
	db := openRepositoryTestDB(t, &models.Coupon{})
	repo := NewCouponRepository(db)

	coupon := &models.Coupon{
		Code:       "FESTIVE10",
		Type:       constants.CouponTypePercent,
		Value:      mustMoney(t, "10.00"),
		ScopeType:  constants.CouponScopeAll,
		UsageLimit: 2,
		IsActive:   true,
	}
	if err := repo.Create(coupon); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		ok, err := repo.IncrementUsedCount(coupon.ID)
		if err != nil {
			t.Fatalf("increment failed: %v", err)
		}
		if !ok {
			t.Fatalf("increment %d should succeed", i+1)
		}
	}

	ok, err := repo.IncrementUsedCount(coupon.ID)
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if ok {
		t.Fatalf("increment past the limit should report false")
	}

	if err := repo.DecrementUsedCount(coupon.ID); err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	reloaded, err := repo.GetByID(coupon.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if reloaded.UsedCount != 1 {
		t.Fatalf("used_count = %d, want 1", reloaded.UsedCount)
	}
}

func TestIncrementUsedCountConcurrentClaims(t *testing.T) {
	db := openRepositoryTestDB(t, &models.Coupon{})
	// One pooled connection keeps sqlite from erroring on concurrent
	// writes; the guard itself decides who wins.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	repo := NewCouponRepository(db)

	coupon := &models.Coupon{
		Code:       "ONEONLY",
		Type:       constants.CouponTypeFixed,
		Value:      mustMoney(t, "50.00"),
		ScopeType:  constants.CouponScopeAll,
		UsageLimit: 1,
		IsActive:   true,
	}
	if err := repo.Create(coupon); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	start := make(chan struct{})
	results := make(chan bool, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := repo.IncrementUsedCount(coupon.ID)
			if err != nil {
				t.Errorf("increment failed: %v", err)
				return
			}
			results <- ok
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	wins := 0
	for ok := range results {
		if ok {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("claims against a single-use coupon: want 1 winner got %d", wins)
	}

	reloaded, err := repo.GetByID(coupon.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if reloaded.UsedCount != 1 {
		t.Fatalf("used_count = %d, want 1", reloaded.UsedCount)
	}
}

func TestCouponUsageCreateIsIdempotentPerOrder(t *testing.T) {
	db := openRepositoryTestDB(t, &models.CouponUsage{})
	repo := NewCouponUsageRepository(db)

	usage := &models.CouponUsage{
		CouponID:       1,
		OrderID:        10,
		UserID:         7,
		DiscountAmount: mustMoney(t, "100.00"),
	}
	inserted, err := repo.Create(usage)
	if err != nil {
		t.Fatalf("create usage failed: %v", err)
	}
	if !inserted {
		t.Fatalf("first insert should report true")
	}

	replay := &models.CouponUsage{
		CouponID:       1,
		OrderID:        10,
		UserID:         7,
		DiscountAmount: mustMoney(t, "100.00"),
	}
	inserted, err = repo.Create(replay)
	if err != nil {
		t.Fatalf("replay insert failed: %v", err)
	}
	if inserted {
		t.Fatalf("replay for the same order should be a no-op")
	}

	count, err := repo.CountByUser(1, 7)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}
