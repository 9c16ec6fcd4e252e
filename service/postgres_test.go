package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"lingua/model"
	"lingua/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB PostgreSQL 方言 + sqlmock，用于校验 SQL 形态
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), utils.NewGormConfig())
	require.NoError(t, err)
	return db, mock
}

func TestSearchUsers_PostgresLanguageContainment(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewUserService(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`native_languages @> $1::jsonb OR learning_languages @> $2::jsonb`) +
		`.*` + regexp.QuoteMeta(`wallet_address <> $3`) +
		`.*` + regexp.QuoteMeta(`ORDER BY quality_score DESC,created_at DESC`)).
		WithArgs(`["es"]`, `["es"]`, walletA).
		WillReturnRows(sqlmock.NewRows([]string{"id", "wallet_address", "name"}).
			AddRow(uuid.NewString(), walletB, "Bob"))

	users, err := svc.SearchUsers(context.Background(), UserFilter{
		Language:      "es",
		ExcludeWallet: walletA,
		Sort:          SortBest,
	})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, walletB, users[0].WalletAddress)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestSubmitRating_PostgresLocksPairRow PostgreSQL 下读取评分时加行锁，读取失败则回滚
func TestSubmitRating_PostgresLocksPairRow(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewRatingService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "user_ratings" WHERE .*rater_wallet = \$1 AND rated_wallet = \$2.* FOR UPDATE`).
		WillReturnError(errInjected)
	mock.ExpectRollback()

	mine, err := svc.SubmitRating(context.Background(), walletA, walletB, model.RatingPositive)
	require.ErrorIs(t, err, ErrStoreFailure)
	assert.Nil(t, mine)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMyRatings_PostgresSingleQuery(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewRatingService(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "rated_wallet","rating" FROM "user_ratings" WHERE rater_wallet = $1 AND rated_wallet IN ($2,$3)`)).
		WithArgs(walletA, walletB, walletC).
		WillReturnRows(sqlmock.NewRows([]string{"rated_wallet", "rating"}).AddRow(walletB, -1))

	ratings, err := svc.GetMyRatings(context.Background(), walletA, []string{walletB, walletC})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{walletB: -1}, ratings)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListContacts_PostgresReceivedFailureDegrades(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewContactService(db)
	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "contacts" WHERE user_wallet = $1 ORDER BY created_at DESC`)).
		WithArgs(walletA).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_wallet", "contact_wallet", "contact_data", "created_at", "updated_at"}).
			AddRow(uuid.NewString(), walletA, walletB,
				`{"username":"bob","name":"Bob","country":"Chile","countryCode":"CL","profilePictureUrl":null,"nativeLanguages":["es"],"learningLanguages":["en"]}`,
				createdAt, createdAt))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "contacts" WHERE contact_wallet = $1 ORDER BY created_at DESC`)).
		WithArgs(walletA).
		WillReturnError(errInjected)

	contacts, err := svc.ListContacts(context.Background(), walletA)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Bob", contacts[0].ContactData.Name)
	assert.Equal(t, []string{"es"}, contacts[0].ContactData.NativeLanguages)
	require.NoError(t, mock.ExpectationsWereMet())
}
