package store

import (
	"context"
	"errors"
	"testing"

	"foodgram/internal/db/mock"
	"foodgram/models"
)

type fixture struct {
	store       *Store
	users       []models.User
	tags        []models.Tag
	ingredients []models.Ingredient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	database, err := mock.Open(ctx)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	s, err := New(database)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	f := &fixture{
		store: s,
		users: []models.User{
			{Email: "a@example.com", Username: "a", FirstName: "A", LastName: "A", PasswordHash: "x"},
			{Email: "b@example.com", Username: "b", FirstName: "B", LastName: "B", PasswordHash: "x"},
		},
		tags: []models.Tag{
			{Name: "Breakfast", Slug: "breakfast", Color: "#111111"},
			{Name: "Fast food", Slug: "fast-food", Color: "#222222"},
			{Name: "Dinner", Slug: "dinner", Color: "#333333"},
		},
		ingredients: []models.Ingredient{
			{Name: "flour", MeasurementUnit: "g"},
			{Name: "milk", MeasurementUnit: "ml"},
			{Name: "milk", MeasurementUnit: "cup"},
		},
	}
	for _, rows := range []any{&f.users, &f.tags, &f.ingredients} {
		if err := database.Create(rows).Error; err != nil {
			t.Fatalf("seed fixture: %v", err)
		}
	}
	return f
}

func (f *fixture) recipe(t *testing.T, authorID uint, name string, tagIDs []uint, lines []IngredientAmount) models.Recipe {
	t.Helper()
	recipe := models.Recipe{AuthorID: authorID, Name: name, Image: "img", Text: "text", CookingTime: 10}
	if err := f.store.Read(context.Background()).Recipes.Insert(&recipe, tagIDs, lines); err != nil {
		t.Fatalf("insert recipe %q: %v", name, err)
	}
	return recipe
}

func count(t *testing.T, f *fixture, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := f.store.DB().Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}

func TestPairAddRejectsDuplicate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	recipe := f.recipe(t, f.users[0].ID, "Soup", nil, nil)
	repos := f.store.Read(context.Background())

	if err := repos.Favorites.Add(f.users[1].ID, recipe.ID); err != nil {
		t.Fatalf("first add: %v", err)
	}
	err := repos.Favorites.Add(f.users[1].ID, recipe.ID)
	if !errors.Is(err, ErrUniqueViolation) {
		t.Fatalf("second add error = %v, want ErrUniqueViolation", err)
	}

	exists, err := repos.Favorites.Exists(f.users[1].ID, recipe.ID)
	if err != nil || !exists {
		t.Fatalf("Exists = %t, %v", exists, err)
	}
}

func TestPairRemoveMissingReturnsNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	recipe := f.recipe(t, f.users[0].ID, "Soup", nil, nil)
	repos := f.store.Read(context.Background())

	if err := repos.ShoppingCart.Remove(f.users[1].ID, recipe.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Remove error = %v, want ErrNotFound", err)
	}

	if err := repos.ShoppingCart.Add(f.users[1].ID, recipe.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := repos.ShoppingCart.Remove(f.users[1].ID, recipe.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := repos.ShoppingCart.Add(f.users[1].ID, recipe.ID); err != nil {
		t.Fatalf("re-add after remove: %v", err)
	}
}

func TestRecipeDeleteCascades(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	recipe := f.recipe(t, f.users[0].ID, "Pancakes",
		[]uint{f.tags[0].ID},
		[]IngredientAmount{{IngredientID: f.ingredients[0].ID, Amount: 100}})
	repos := f.store.Read(context.Background())
	if err := repos.Favorites.Add(f.users[1].ID, recipe.ID); err != nil {
		t.Fatalf("favorite: %v", err)
	}
	if err := repos.ShoppingCart.Add(f.users[1].ID, recipe.ID); err != nil {
		t.Fatalf("cart: %v", err)
	}

	if err := repos.Recipes.Delete(recipe.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for _, model := range []any{&models.RecipeTag{}, &models.RecipeIngredient{}, &models.Favorite{}, &models.ShoppingCartEntry{}} {
		if n := count(t, f, model, "recipe_id = ?", recipe.ID); n != 0 {
			t.Fatalf("%T rows left after delete: %d", model, n)
		}
	}
	if err := repos.Recipes.Delete(recipe.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestUserDeleteCascades(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	author, reader := f.users[0], f.users[1]
	recipe := f.recipe(t, author.ID, "Pancakes", []uint{f.tags[0].ID}, nil)
	theirs := f.recipe(t, reader.ID, "Toast", nil, nil)
	repos := f.store.Read(context.Background())

	if err := repos.Favorites.Add(reader.ID, recipe.ID); err != nil {
		t.Fatalf("favorite: %v", err)
	}
	if err := repos.ShoppingCart.Add(author.ID, theirs.ID); err != nil {
		t.Fatalf("cart: %v", err)
	}
	if err := repos.Subscriptions.Add(reader.ID, author.ID); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := f.store.Tx(context.Background(), func(tx *Repositories) error {
		return tx.Users.Delete(author.ID)
	}); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if n := count(t, f, &models.Recipe{}, "author_id = ?", author.ID); n != 0 {
		t.Fatalf("recipes left: %d", n)
	}
	if n := count(t, f, &models.Favorite{}, "recipe_id = ?", recipe.ID); n != 0 {
		t.Fatalf("favorites left: %d", n)
	}
	if n := count(t, f, &models.ShoppingCartEntry{}, "user_id = ?", author.ID); n != 0 {
		t.Fatalf("cart entries left: %d", n)
	}
	if n := count(t, f, &models.Subscription{}, "author_id = ?", author.ID); n != 0 {
		t.Fatalf("subscriptions left: %d", n)
	}
	if n := count(t, f, &models.Recipe{}, "id = ?", theirs.ID); n != 1 {
		t.Fatalf("other user's recipe removed")
	}
}

func TestTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	boom := errors.New("boom")

	err := f.store.Tx(context.Background(), func(tx *Repositories) error {
		recipe := models.Recipe{AuthorID: f.users[0].ID, Name: "Ghost", Image: "img", Text: "t", CookingTime: 5}
		if err := tx.Recipes.Insert(&recipe, []uint{f.tags[0].ID}, nil); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Tx error = %v, want boom", err)
	}
	if n := count(t, f, &models.Recipe{}, "name = ?", "Ghost"); n != 0 {
		t.Fatalf("recipe persisted after rollback")
	}
	if n := count(t, f, &models.RecipeTag{}, "1 = 1"); n != 0 {
		t.Fatalf("tag links persisted after rollback")
	}
}

func TestReplaceLinksOverwrites(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	recipe := f.recipe(t, f.users[0].ID, "Pancakes",
		[]uint{f.tags[0].ID, f.tags[1].ID},
		[]IngredientAmount{{IngredientID: f.ingredients[0].ID, Amount: 100}})
	repos := f.store.Read(context.Background())

	if err := repos.Recipes.ReplaceLinks(recipe.ID, []uint{f.tags[2].ID},
		[]IngredientAmount{{IngredientID: f.ingredients[1].ID, Amount: 5}}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	loaded, err := repos.Recipes.Get(recipe.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(loaded.TagLinks) != 1 || loaded.TagLinks[0].Tag == nil || loaded.TagLinks[0].Tag.Slug != "dinner" {
		t.Fatalf("unexpected tags after replace: %+v", loaded.TagLinks)
	}
	if len(loaded.IngredientLines) != 1 || loaded.IngredientLines[0].Amount != 5 {
		t.Fatalf("unexpected lines after replace: %+v", loaded.IngredientLines)
	}
}

func TestListFiltersAndOrdering(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	first := f.recipe(t, f.users[0].ID, "Oatmeal", []uint{f.tags[0].ID, f.tags[1].ID}, nil)
	second := f.recipe(t, f.users[1].ID, "Burger", []uint{f.tags[1].ID}, nil)
	third := f.recipe(t, f.users[0].ID, "Stew", []uint{f.tags[2].ID}, nil)
	repos := f.store.Read(context.Background())

	if err := repos.Favorites.Add(f.users[1].ID, first.ID); err != nil {
		t.Fatalf("favorite: %v", err)
	}
	if err := repos.ShoppingCart.Add(f.users[1].ID, third.ID); err != nil {
		t.Fatalf("cart: %v", err)
	}

	ids := func(recipes []models.Recipe) []uint {
		out := make([]uint, 0, len(recipes))
		for _, recipe := range recipes {
			out = append(out, recipe.ID)
		}
		return out
	}

	tests := []struct {
		name  string
		query RecipeQuery
		want  []uint
	}{
		{"all newest first", RecipeQuery{}, []uint{third.ID, second.ID, first.ID}},
		{"tag substring once per recipe", RecipeQuery{TagSlugs: []string{"FAST"}}, []uint{second.ID, first.ID}},
		{"tags are or'ed", RecipeQuery{TagSlugs: []string{"break", "dinn"}}, []uint{third.ID, first.ID}},
		{"like wildcards are literal", RecipeQuery{TagSlugs: []string{"%"}}, []uint{}},
		{"author", RecipeQuery{AuthorID: f.users[0].ID}, []uint{third.ID, first.ID}},
		{"favorited", RecipeQuery{FavoritedBy: f.users[1].ID}, []uint{first.ID}},
		{"in cart", RecipeQuery{InCartOf: f.users[1].ID}, []uint{third.ID}},
		{"combined", RecipeQuery{AuthorID: f.users[0].ID, TagSlugs: []string{"fast"}}, []uint{first.ID}},
	}

	for _, tt := range tests {
		recipes, total, err := repos.Recipes.List(tt.query, 0, 10)
		if err != nil {
			t.Fatalf("%s: list: %v", tt.name, err)
		}
		got := ids(recipes)
		if int(total) != len(tt.want) || len(got) != len(tt.want) {
			t.Fatalf("%s: got %v (total %d), want %v", tt.name, got, total, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("%s: got %v, want %v", tt.name, got, tt.want)
			}
		}
	}

	page, total, err := repos.Recipes.List(RecipeQuery{}, 1, 1)
	if err != nil {
		t.Fatalf("paged list: %v", err)
	}
	if total != 3 || len(page) != 1 || page[0].ID != second.ID {
		t.Fatalf("unexpected page: total=%d ids=%v", total, ids(page))
	}
}

func TestAggregateSumsByNameAndUnit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	flour, milkMl, milkCup := f.ingredients[0], f.ingredients[1], f.ingredients[2]
	one := f.recipe(t, f.users[0].ID, "One", nil, []IngredientAmount{
		{IngredientID: flour.ID, Amount: 100},
		{IngredientID: milkMl.ID, Amount: 200},
	})
	two := f.recipe(t, f.users[0].ID, "Two", nil, []IngredientAmount{
		{IngredientID: flour.ID, Amount: 50},
		{IngredientID: milkCup.ID, Amount: 1},
	})
	other := f.recipe(t, f.users[0].ID, "Other", nil, []IngredientAmount{{IngredientID: flour.ID, Amount: 999}})
	repos := f.store.Read(context.Background())

	for _, id := range []uint{one.ID, two.ID} {
		if err := repos.ShoppingCart.Add(f.users[1].ID, id); err != nil {
			t.Fatalf("cart: %v", err)
		}
	}
	if err := repos.ShoppingCart.Add(f.users[0].ID, other.ID); err != nil {
		t.Fatalf("cart: %v", err)
	}

	rows, err := repos.Shopping.Aggregate(f.users[1].ID)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	want := []ShoppingRow{
		{Name: "flour", MeasurementUnit: "g", Total: 150},
		{Name: "milk", MeasurementUnit: "cup", Total: 1},
		{Name: "milk", MeasurementUnit: "ml", Total: 200},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %+v, want %+v", rows, want)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}

	empty, err := repos.Shopping.Aggregate(9999)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty cart = %+v, %v", empty, err)
	}
}

func TestTagsByIDsServesFromCache(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	repos := f.store.Read(context.Background())

	tag, err := repos.Catalog.TagByID(f.tags[0].ID)
	if err != nil {
		t.Fatalf("TagByID: %v", err)
	}
	if err := f.store.DB().Exec("DELETE FROM tags WHERE id = ?", tag.ID).Error; err != nil {
		t.Fatalf("delete tag row: %v", err)
	}

	cached, err := repos.Catalog.TagByID(tag.ID)
	if err != nil || cached.Slug != tag.Slug {
		t.Fatalf("expected cached tag, got %+v, %v", cached, err)
	}

	found, err := repos.Catalog.TagsByIDs([]uint{f.tags[2].ID, 4242, f.tags[1].ID})
	if err != nil {
		t.Fatalf("TagsByIDs: %v", err)
	}
	if len(found) != 2 || found[0].ID != f.tags[2].ID || found[1].ID != f.tags[1].ID {
		t.Fatalf("unexpected tags: %+v", found)
	}

	if _, err := repos.Catalog.TagByID(4242); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing tag error = %v, want ErrNotFound", err)
	}
}

func TestIngredientsPrefixSearch(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	repos := f.store.Read(context.Background())

	matches, err := repos.Catalog.Ingredients("MI")
	if err != nil {
		t.Fatalf("Ingredients: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected two milk entries, got %+v", matches)
	}

	none, err := repos.Catalog.Ingredients("ilk")
	if err != nil || len(none) != 0 {
		t.Fatalf("prefix search matched substring: %+v, %v", none, err)
	}

	all, err := repos.Catalog.Ingredients("")
	if err != nil || len(all) != 3 {
		t.Fatalf("unfiltered = %+v, %v", all, err)
	}
}

func TestEnsureIngredientIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	repos := f.store.Read(context.Background())

	existing, created, err := repos.Catalog.EnsureIngredient("flour", "g")
	if err != nil || created || existing.ID != f.ingredients[0].ID {
		t.Fatalf("existing ingredient: %+v created=%t err=%v", existing, created, err)
	}

	fresh, created, err := repos.Catalog.EnsureIngredient("sugar", "g")
	if err != nil || !created || fresh.ID == 0 {
		t.Fatalf("new ingredient: %+v created=%t err=%v", fresh, created, err)
	}
}

func TestFollowedAuthorsAndCounts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	extra := models.User{Email: "c@example.com", Username: "c", FirstName: "C", LastName: "C", PasswordHash: "x"}
	if err := f.store.Read(context.Background()).Users.Create(&extra); err != nil {
		t.Fatalf("create user: %v", err)
	}
	f.recipe(t, f.users[1].ID, "One", nil, nil)
	f.recipe(t, f.users[1].ID, "Two", nil, nil)
	repos := f.store.Read(context.Background())

	for _, author := range []uint{f.users[1].ID, extra.ID} {
		if err := repos.Subscriptions.Add(f.users[0].ID, author); err != nil {
			t.Fatalf("subscribe: %v", err)
		}
	}

	authors, total, err := repos.Subscriptions.FollowedAuthors(f.users[0].ID, 0, 10)
	if err != nil {
		t.Fatalf("FollowedAuthors: %v", err)
	}
	if total != 2 || len(authors) != 2 || authors[0].ID != extra.ID {
		t.Fatalf("unexpected follows: total=%d %+v", total, authors)
	}

	counts, err := repos.Recipes.CountByAuthors([]uint{f.users[1].ID, extra.ID})
	if err != nil {
		t.Fatalf("CountByAuthors: %v", err)
	}
	if counts[f.users[1].ID] != 2 || counts[extra.ID] != 0 {
		t.Fatalf("unexpected counts: %v", counts)
	}

	preview, err := repos.Recipes.ByAuthor(f.users[1].ID, 1)
	if err != nil || len(preview) != 1 || preview[0].Name != "Two" {
		t.Fatalf("preview = %+v, %v", preview, err)
	}
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	dup := models.User{Email: f.users[0].Email, Username: "other", FirstName: "O", LastName: "O", PasswordHash: "x"}
	if err := f.store.Read(context.Background()).Users.Create(&dup); !errors.Is(err, ErrUniqueViolation) {
		t.Fatalf("Create error = %v, want ErrUniqueViolation", err)
	}
}
