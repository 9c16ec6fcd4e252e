package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"lingua/model"
	"lingua/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var errInjected = errors.New("injected store failure")

// newTestDB 每个测试独立的内存 SQLite
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), utils.NewGormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, utils.Migrate(db))
	return db
}

// failQueriesOn 让指定表的查询失败；after 表示前 after 次查询正常
func failQueriesOn(t *testing.T, db *gorm.DB, table string, after int) {
	t.Helper()
	seen := 0
	err := db.Callback().Query().Before("gorm:query").Register("test:fail_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table != table {
			return
		}
		seen++
		if seen > after {
			_ = tx.AddError(errInjected)
		}
	})
	require.NoError(t, err)
}

func seedUser(t *testing.T, db *gorm.DB, wallet, name string, native, learning []string) *model.User {
	t.Helper()
	user := &model.User{
		WalletAddress:     wallet,
		Username:          name + "_world",
		Name:              name,
		Country:           "Spain",
		CountryCode:       "ES",
		NativeLanguages:   native,
		LearningLanguages: learning,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedContact(t *testing.T, db *gorm.DB, from, to string, snapshot model.ContactSnapshot, createdAt time.Time) *model.Contact {
	t.Helper()
	contact := &model.Contact{
		UserWallet:    from,
		ContactWallet: to,
		ContactData:   snapshot.WithDefaults(),
		CreatedAt:     createdAt,
	}
	require.NoError(t, db.Create(contact).Error)
	return contact
}

func qualityScore(t *testing.T, db *gorm.DB, wallet string) int {
	t.Helper()
	var user model.User
	require.NoError(t, db.Where("wallet_address = ?", wallet).First(&user).Error)
	return user.QualityScore
}
