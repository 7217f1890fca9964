package subscription

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pdfgate/pdfgate/internal/db"
	"github.com/pdfgate/pdfgate/internal/models"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "pdfgate-test.db")
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func createUserAndPackage(t *testing.T, conn *gorm.DB, durationDays int) (*models.User, *models.Package) {
	t.Helper()
	user := models.User{Email: "u@example.com", Name: "U", Password: "x", Role: models.RoleUser}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	pkg := models.Package{Name: "Monthly", Price: 9.99, Duration: durationDays, IsActive: true}
	if err := conn.Create(&pkg).Error; err != nil {
		t.Fatalf("create package: %v", err)
	}
	return &user, &pkg
}

func countActive(t *testing.T, conn *gorm.DB, userID uint64) int64 {
	t.Helper()
	var count int64
	if err := conn.Model(&models.Subscription{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&count).Error; err != nil {
		t.Fatalf("count active: %v", err)
	}
	return count
}

func TestComputeEndDate(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := ComputeEndDate(start, 30)
	if end == nil {
		t.Fatalf("expected end date")
	}
	if want := start.AddDate(0, 0, 30); !end.Equal(want) {
		t.Fatalf("expected %s, got %s", want, end)
	}
	if ComputeEndDate(start, 0) != nil {
		t.Fatalf("expected nil end date for lifetime duration")
	}
}

func TestAssign_ComputesEndDateFromPackageDuration(t *testing.T) {
	conn := openTestDB(t)
	ledger := NewLedger(conn)
	user, pkg := createUserAndPackage(t, conn, 30)

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sub, err := ledger.Assign(context.Background(), user.ID, pkg, start, nil)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if sub.EndDate == nil {
		t.Fatalf("expected computed end date")
	}
	if want := start.AddDate(0, 0, 30); !sub.EndDate.Equal(want) {
		t.Fatalf("expected end date %s, got %s", want, sub.EndDate)
	}
	if !sub.IsActive {
		t.Fatalf("expected new subscription to be active")
	}
}

func TestAssign_LifetimePackageHasNilEndDate(t *testing.T) {
	conn := openTestDB(t)
	ledger := NewLedger(conn)
	user, pkg := createUserAndPackage(t, conn, 0)

	sub, err := ledger.Assign(context.Background(), user.ID, pkg, time.Now().UTC(), nil)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if sub.EndDate != nil {
		t.Fatalf("expected nil end date, got %s", sub.EndDate)
	}
	if sub.IsExpired(time.Now().UTC().AddDate(100, 0, 0)) {
		t.Fatalf("lifetime subscription must never expire")
	}
}

func TestAssign_DeactivatesPriorActive(t *testing.T) {
	conn := openTestDB(t)
	ledger := NewLedger(conn)
	user, pkg := createUserAndPackage(t, conn, 30)

	ctx := context.Background()
	first, err := ledger.Assign(ctx, user.ID, pkg, time.Now().UTC(), nil)
	if err != nil {
		t.Fatalf("first assign: %v", err)
	}
	second, err := ledger.Assign(ctx, user.ID, pkg, time.Now().UTC(), nil)
	if err != nil {
		t.Fatalf("second assign: %v", err)
	}

	if got := countActive(t, conn, user.ID); got != 1 {
		t.Fatalf("expected exactly 1 active subscription, got %d", got)
	}

	var reloaded models.Subscription
	if errFind := conn.First(&reloaded, first.ID).Error; errFind != nil {
		t.Fatalf("reload first: %v", errFind)
	}
	if reloaded.IsActive {
		t.Fatalf("expected first subscription to be deactivated")
	}

	current, errCurrent := ledger.CurrentActive(ctx, user.ID)
	if errCurrent != nil {
		t.Fatalf("current active: %v", errCurrent)
	}
	if current.ID != second.ID {
		t.Fatalf("expected current active id %d, got %d", second.ID, current.ID)
	}
}

func TestAssign_ConcurrentKeepsSingleActive(t *testing.T) {
	conn := openTestDB(t)
	ledger := NewLedger(conn)
	user, pkg := createUserAndPackage(t, conn, 30)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = ledger.Assign(ctx, user.ID, pkg, time.Now().UTC(), nil)
		}()
	}
	wg.Wait()

	if got := countActive(t, conn, user.ID); got > 1 {
		t.Fatalf("invariant violated: %d active subscriptions", got)
	}
}

func TestCurrentActive_NoSubscription(t *testing.T) {
	conn := openTestDB(t)
	ledger := NewLedger(conn)
	user, _ := createUserAndPackage(t, conn, 30)

	if _, err := ledger.CurrentActive(context.Background(), user.ID); !errors.Is(err, ErrNoActiveSubscription) {
		t.Fatalf("expected ErrNoActiveSubscription, got %v", err)
	}
}

func TestCurrentActive_PrefersLatestEndDate(t *testing.T) {
	conn := openTestDB(t)
	ledger := NewLedger(conn)
	user, pkg := createUserAndPackage(t, conn, 30)

	// Two rows marked active simulate the race the write path prevents.
	now := time.Now().UTC().Truncate(time.Second)
	early := now.AddDate(0, 0, 10)
	late := now.AddDate(0, 0, 40)
	rows := []models.Subscription{
		{UserID: user.ID, PackageID: pkg.ID, StartDate: now, EndDate: &early, IsActive: true},
		{UserID: user.ID, PackageID: pkg.ID, StartDate: now, EndDate: &late, IsActive: true},
	}
	if err := conn.Create(&rows).Error; err != nil {
		t.Fatalf("create rows: %v", err)
	}

	current, err := ledger.CurrentActive(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("current active: %v", err)
	}
	if current.EndDate == nil || !current.EndDate.Equal(late) {
		t.Fatalf("expected latest end date row, got %+v", current)
	}
}

func TestIsExpired_DerivedOnRead(t *testing.T) {
	end := time.Now().UTC().Add(time.Hour)
	sub := models.Subscription{EndDate: &end, IsActive: true}

	if sub.IsExpired(time.Now().UTC()) {
		t.Fatalf("expected not expired before end date")
	}
	// Same stored row, later read: expiry flips without any write.
	if !sub.IsExpired(end.Add(time.Minute)) {
		t.Fatalf("expected expired after end date")
	}
}
