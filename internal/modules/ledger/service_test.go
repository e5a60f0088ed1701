package ledger

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"foodgram/internal/database"
	"foodgram/internal/domain"
	"foodgram/internal/pkg/pagination"
	"foodgram/internal/repository"
)

type fixture struct {
	db    *gorm.DB
	svc   *Service
	alice *domain.User
	bob   *domain.User
	carol *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:ledger_%s?mode=memory&cache=shared", name), nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	f := &fixture{db: db}
	f.alice = seedUser(t, db, "alice")
	f.bob = seedUser(t, db, "bob")
	f.carol = seedUser(t, db, "carol")

	f.svc = NewService(
		repository.NewFollowLedger(db),
		repository.NewFavoriteLedger(db),
		repository.NewBasketLedger(db),
		repository.NewUserRepository(db),
		repository.NewRecipeRepository(db),
		nil,
	)
	return f
}

func seedUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u := &domain.User{Email: username + "@example.com", Username: username, FirstName: username, LastName: "Test", PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func (f *fixture) recipe(t *testing.T, author *domain.User, title string) *domain.Recipe {
	t.Helper()
	r := &domain.Recipe{AuthorID: author.ID, Title: title, Text: "text", CookingTime: 5, Image: "/media/recipes/" + title + ".png"}
	require.NoError(t, f.db.Omit("Author", "Tags", "Components").Create(r).Error)
	return r
}

func TestMarkTwiceFailsWithDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.recipe(t, f.bob, "soup")

	for _, kind := range []Kind{KindFavorite, KindBasket} {
		rel, err := f.svc.Mark(ctx, kind, f.alice.ID, r.ID)
		require.NoError(t, err)
		assert.Equal(t, kind, rel.Kind)
		assert.Equal(t, f.alice.ID, rel.UserID)
		assert.Equal(t, r.ID, rel.TargetID)
		assert.NotZero(t, rel.ID)
		assert.WithinDuration(t, time.Now(), rel.CreatedAt, time.Minute)

		_, err = f.svc.Mark(ctx, kind, f.alice.ID, r.ID)
		assert.ErrorIs(t, err, ErrDuplicate, kind)
	}

	rel, err := f.svc.Mark(ctx, KindFollow, f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	var stored domain.Follow
	require.NoError(t, f.db.Where("user_id = ? AND author_id = ?", f.alice.ID, f.bob.ID).First(&stored).Error)
	assert.Equal(t, stored.ID, rel.ID)
	assert.Equal(t, f.bob.ID, rel.TargetID)

	_, err = f.svc.Mark(ctx, KindFollow, f.alice.ID, f.bob.ID)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUnmarkMissingFailsWithNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.recipe(t, f.bob, "soup")

	assert.ErrorIs(t, f.svc.Unmark(ctx, KindFavorite, f.alice.ID, r.ID), ErrNotFound)
	assert.ErrorIs(t, f.svc.Unmark(ctx, KindBasket, f.alice.ID, r.ID), ErrNotFound)
	assert.ErrorIs(t, f.svc.Unmark(ctx, KindFollow, f.alice.ID, f.bob.ID), ErrNotFound)

	_, err := f.svc.Mark(ctx, KindBasket, f.alice.ID, r.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.Unmark(ctx, KindBasket, f.alice.ID, r.ID))
	assert.ErrorIs(t, f.svc.Unmark(ctx, KindBasket, f.alice.ID, r.ID), ErrNotFound)
}

func TestSelfFollowIsAlwaysRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Mark(ctx, KindFollow, f.alice.ID, f.alice.ID)
	assert.ErrorIs(t, err, ErrSelfFollow)

	// The table refuses the row too.
	err = f.db.Create(&domain.Follow{UserID: f.alice.ID, AuthorID: f.alice.ID}).Error
	require.Error(t, err)
	assert.True(t, database.IsCheckViolation(err), err.Error())

	_, err = f.svc.Mark(ctx, KindFollow, f.alice.ID, f.alice.ID)
	assert.ErrorIs(t, err, ErrSelfFollow)
}

// beforeCreate runs sql inside the next create on table, ahead of the
// insert itself, the way a concurrent writer would.
func beforeCreate(t *testing.T, db *gorm.DB, table, sql string, args ...any) {
	t.Helper()
	fired := false
	err := db.Callback().Create().Before("gorm:create").Register("test:before_create", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != table {
			return
		}
		fired = true
		if err := tx.Session(&gorm.Session{NewDB: true}).Exec(sql, args...).Error; err != nil {
			tx.AddError(err)
		}
	})
	require.NoError(t, err)
}

func TestMarkLosingInsertRaceIsDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.recipe(t, f.bob, "soup")

	beforeCreate(t, f.db, "favour_recipes",
		"INSERT INTO favour_recipes (user_id, recipe_id, created_at) VALUES (?, ?, ?)", f.alice.ID, r.ID, time.Now())

	_, err := f.svc.Mark(ctx, KindFavorite, f.alice.ID, r.ID)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMarkTargetDeletedMidwayIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.recipe(t, f.bob, "soup")

	beforeCreate(t, f.db, "baskets", "DELETE FROM recipes WHERE id = ?", r.ID)

	_, err := f.svc.Mark(ctx, KindBasket, f.alice.ID, r.ID)
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestMarkUnknownTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Mark(ctx, KindFollow, f.alice.ID, 9999)
	assert.ErrorIs(t, err, ErrTargetNotFound)
	_, err = f.svc.Mark(ctx, KindFavorite, f.alice.ID, 9999)
	assert.ErrorIs(t, err, ErrTargetNotFound)
	assert.ErrorIs(t, f.svc.Unmark(ctx, KindBasket, f.alice.ID, 9999), ErrTargetNotFound)
	_, err = f.svc.Mark(ctx, Kind("bookmark"), f.alice.ID, f.bob.ID)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestSubscriptionsWithRecipePreview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.recipe(t, f.bob, "first")
	f.recipe(t, f.bob, "second")
	latest := f.recipe(t, f.bob, "third")

	_, err := f.svc.Mark(ctx, KindFollow, f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	_, err = f.svc.Mark(ctx, KindFollow, f.alice.ID, f.carol.ID)
	require.NoError(t, err)

	subs, total, err := f.svc.Subscriptions(ctx, f.alice.ID, 2, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, subs, 2)

	assert.Equal(t, "bob", subs[0].Username)
	assert.True(t, subs[0].IsSubscribed)
	assert.Equal(t, int64(3), subs[0].RecipesCount)
	require.Len(t, subs[0].Recipes, 2)
	assert.Equal(t, latest.ID, subs[0].Recipes[0].ID)

	assert.Equal(t, "carol", subs[1].Username)
	assert.Zero(t, subs[1].RecipesCount)
	assert.NotNil(t, subs[1].Recipes)

	all, err := f.svc.Subscription(ctx, f.bob.ID, AllRecipes)
	require.NoError(t, err)
	assert.Len(t, all.Recipes, 3)

	none, err := f.svc.Subscription(ctx, f.bob.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, none.Recipes)
	assert.Equal(t, int64(3), none.RecipesCount)

	page2, total, err := f.svc.Subscriptions(ctx, f.alice.ID, AllRecipes, pagination.Params{Page: 2, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, page2, 1)
	assert.Equal(t, "carol", page2[0].Username)
}

func TestParseRecipesLimit(t *testing.T) {
	n, err := ParseRecipesLimit("")
	require.NoError(t, err)
	assert.Equal(t, AllRecipes, n)

	n, err = ParseRecipesLimit("3")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = ParseRecipesLimit("0")
	require.NoError(t, err)
	assert.Zero(t, n)

	for _, raw := range []string{"-1", "two", "1.5"} {
		_, err := ParseRecipesLimit(raw)
		assert.ErrorIs(t, err, ErrInvalidRecipesLimit, raw)
	}
}
