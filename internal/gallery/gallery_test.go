package gallery

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexraskin/hovergallery/internal/cache"
	"github.com/alexraskin/hovergallery/internal/database"
	"github.com/alexraskin/hovergallery/internal/models"
)

type failingStore struct {
	database.Store
	err error
}

func (f failingStore) Get(context.Context, string) ([]byte, error)      { return nil, f.err }
func (f failingStore) Set(context.Context, string, []byte) error        { return f.err }
func (f failingStore) SetMany(context.Context, map[string][]byte) error { return f.err }

// pausingStore holds the next Get of key after it has read the value, until
// release is closed.
type pausingStore struct {
	database.Store
	key     string
	armed   atomic.Bool
	fetched chan struct{}
	release chan struct{}
}

func newPausingStore(key string) *pausingStore {
	return &pausingStore{
		Store:   database.NewMemory(),
		key:     key,
		fetched: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (p *pausingStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := p.Store.Get(ctx, key)
	if key == p.key && p.armed.CompareAndSwap(true, false) {
		close(p.fetched)
		<-p.release
	}
	return data, err
}

func newTestService() (*Service, database.Store) {
	store := database.NewMemory()
	return NewService(store, cache.NewCache(time.Hour)), store
}

func TestLoadEmpty(t *testing.T) {
	s, _ := newTestService()

	items, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	fonts, err := s.LoadFontSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.FontSettings{FontSize: "inherit", TextColor: "#ffff"}, fonts)
}

func TestLoadMalformedData(t *testing.T) {
	s, store := newTestService()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, MenuItemsKey, []byte(`{"not":"a list"}`)))
	require.NoError(t, store.Set(ctx, FontSettingsKey, []byte(`not json`)))

	items, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	fonts, err := s.LoadFontSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultFontSettings(), fonts)
}

func TestLoadNullList(t *testing.T) {
	s, store := newTestService()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, MenuItemsKey, []byte(`null`)))

	items, err := s.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestLoadStoredFontSettingsAreRevalidated(t *testing.T) {
	s, store := newTestService()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, FontSettingsKey, []byte(`{"font_size":"1.5rem","text_color":"url(x)"}`)))

	fonts, err := s.LoadFontSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.5rem", fonts.FontSize)
	assert.Equal(t, DefaultTextColor, fonts.TextColor)
}

func TestStoreFailureIsAnError(t *testing.T) {
	boom := errors.New("connection refused")
	s := NewService(failingStore{err: boom}, nil)
	ctx := context.Background()

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = s.LoadFontSettings(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = s.SaveMenuItems(ctx, []map[string]string{})
	assert.ErrorIs(t, err, boom)
	_, err = s.SaveFontSettings(ctx, nil)
	assert.ErrorIs(t, err, boom)
	_, err = s.Replace(ctx, nil, nil)
	assert.ErrorIs(t, err, boom)
}

func TestSaveMenuItemsRoundTrip(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	want := []models.MenuEntry{
		{Image: "https://example.com/one.png", Title: "One", Link: "https://example.com/one"},
		{Image: "https://example.com/two.png", Title: "Two", Link: ""},
		{Image: "", Title: "", Link: "/relative/path"},
	}
	saved, err := s.SaveMenuItems(ctx, want)
	require.NoError(t, err)
	assert.Equal(t, want, saved)

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, loaded)
}

func TestSaveDuringSlowLoadIsNotUndoneByCache(t *testing.T) {
	ctx := context.Background()
	store := newPausingStore(MenuItemsKey)
	s := NewService(store, cache.NewCache(time.Hour))

	_, err := s.SaveMenuItems(ctx, []models.MenuEntry{{Title: "old"}})
	require.NoError(t, err)

	store.armed.Store(true)
	done := make(chan []models.MenuEntry)
	go func() {
		items, _ := s.Load(ctx)
		done <- items
	}()

	<-store.fetched
	_, err = s.SaveMenuItems(ctx, []models.MenuEntry{{Title: "new"}})
	require.NoError(t, err)
	close(store.release)

	// the in-flight read may return what it fetched, but must not cache it
	assert.Equal(t, []models.MenuEntry{{Title: "old"}}, <-done)

	items, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.MenuEntry{{Title: "new"}}, items)
}

func TestSaveDuringSlowFontLoadIsNotUndoneByCache(t *testing.T) {
	ctx := context.Background()
	store := newPausingStore(FontSettingsKey)
	s := NewService(store, cache.NewCache(time.Hour))

	_, err := s.SaveFontSettings(ctx, map[string]string{"font_size": "12px"})
	require.NoError(t, err)

	store.armed.Store(true)
	done := make(chan struct{})
	go func() {
		_, _ = s.LoadFontSettings(ctx)
		close(done)
	}()

	<-store.fetched
	_, err = s.SaveFontSettings(ctx, map[string]string{"font_size": "30px"})
	require.NoError(t, err)
	close(store.release)
	<-done

	f, err := s.LoadFontSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "30px", f.FontSize)
}

func TestSaveMenuItemsNonList(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	_, err := s.SaveMenuItems(ctx, []map[string]string{{"image": "https://x/y.png", "title": "keep"}})
	require.NoError(t, err)

	for _, raw := range []any{nil, "x", 42, []byte("x"), map[string]any{"title": "single"}} {
		items, err := s.SaveMenuItems(ctx, raw)
		require.NoError(t, err)
		assert.Equal(t, []models.MenuEntry{}, items, "input %#v", raw)

		loaded, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, loaded, "input %#v should persist an empty list", raw)
	}
}

func TestSaveMenuItemsIsTotalReplace(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	_, err := s.SaveMenuItems(ctx, []map[string]string{{"title": "A"}, {"title": "B"}, {"title": "C"}})
	require.NoError(t, err)
	_, err = s.SaveMenuItems(ctx, []map[string]string{{"title": "Z"}})
	require.NoError(t, err)

	items, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.MenuEntry{{Title: "Z"}}, items)
}

func TestSaveMenuItemsFillsMissingFields(t *testing.T) {
	items := SanitizeMenuItems([]any{
		map[string]any{"title": "Only title"},
		"not a record",
		map[string]any{"image": "https://x/y.png", "title": nil, "link": 7},
	})
	assert.Equal(t, []models.MenuEntry{
		{Title: "Only title"},
		{},
		{Image: "https://x/y.png", Link: "http://7"},
	}, items)
}

func TestSaveMenuItemsIndexKeyedMap(t *testing.T) {
	items := SanitizeMenuItems(map[string]any{
		"10": map[string]any{"title": "ten"},
		"2":  map[string]any{"title": "two"},
		"0":  map[string]string{"title": "zero"},
	})
	require.Len(t, items, 3)
	assert.Equal(t, "zero", items[0].Title)
	assert.Equal(t, "two", items[1].Title)
	assert.Equal(t, "ten", items[2].Title)
}

func TestSaveMenuItemsSanitizes(t *testing.T) {
	items := SanitizeMenuItems([]map[string]string{{
		"image": "javascript:alert(1)",
		"title": "<script>alert(1)</script><b>Hi</b>",
		"link":  " example.com/page ",
	}})
	require.Len(t, items, 1)
	assert.Equal(t, "", items[0].Image)
	assert.Equal(t, "Hi", items[0].Title)
	assert.Equal(t, "http://example.com/page", items[0].Link)
}

func TestSaveFontSettings(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	got, err := s.SaveFontSettings(ctx, map[string]string{"fontSize": "20px", "textColor": "#fff"})
	require.NoError(t, err)
	assert.Equal(t, models.FontSettings{FontSize: "20px", TextColor: "#fff"}, got)

	got, err = s.SaveFontSettings(ctx, map[string]string{"fontSize": "huge", "textColor": "notacolor!"})
	require.NoError(t, err)
	assert.Equal(t, models.FontSettings{FontSize: "inherit", TextColor: "#ffff"}, got)

	loaded, err := s.LoadFontSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, loaded)
}

func TestSaveFontSettingsFieldsAreIndependent(t *testing.T) {
	got := SanitizeFontSettings(map[string]any{"font_size": "huge", "text_color": "rebeccapurple"})
	assert.Equal(t, models.FontSettings{FontSize: "inherit", TextColor: "rebeccapurple"}, got)

	got = SanitizeFontSettings(models.FontSettings{FontSize: "1.25em", TextColor: "<red>"})
	assert.Equal(t, models.FontSettings{FontSize: "1.25em", TextColor: "#ffff"}, got)

	assert.Equal(t, DefaultFontSettings(), SanitizeFontSettings("garbage"))
	assert.Equal(t, DefaultFontSettings(), SanitizeFontSettings(nil))
}

func TestReplaceWritesBothRecords(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	// warm the cache so the write has to invalidate it
	_, err := s.Gallery(ctx)
	require.NoError(t, err)

	g, err := s.Replace(ctx,
		[]map[string]string{{"image": "https://x/a.png", "title": "A"}, {"image": "https://x/b.png", "title": "B"}},
		map[string]string{"font_size": "18px", "text_color": "rgb(10, 20, 30)"},
	)
	require.NoError(t, err)
	assert.Len(t, g.Items, 2)

	loaded, err := s.Gallery(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(g, loaded); diff != "" {
		t.Errorf("reloaded gallery mismatch (-saved +loaded):\n%s", diff)
	}
	assert.Equal(t, "rgb(10, 20, 30)", loaded.FontSettings.TextColor)
}

func TestReorderPersistsNewOrder(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	original := "menu_items[0][image]=https%3A%2F%2Fx%2Fa.png&menu_items[0][title]=A&menu_items[0][link]=" +
		"&menu_items[1][image]=https%3A%2F%2Fx%2Fb.png&menu_items[1][title]=B&menu_items[1][link]=https%3A%2F%2Fb.example"
	sub, err := ParseForm(original)
	require.NoError(t, err)
	_, err = s.Replace(ctx, sub.Items, sub.Fonts)
	require.NoError(t, err)

	// rows dragged into the opposite order keep their original indices
	reordered := "menu_items[1][image]=https%3A%2F%2Fx%2Fb.png&menu_items[1][title]=B&menu_items[1][link]=https%3A%2F%2Fb.example" +
		"&menu_items[0][image]=https%3A%2F%2Fx%2Fa.png&menu_items[0][title]=A&menu_items[0][link]="
	sub, err = ParseForm(reordered)
	require.NoError(t, err)
	_, err = s.Replace(ctx, sub.Items, sub.Fonts)
	require.NoError(t, err)

	items, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.MenuEntry{
		{Image: "https://x/b.png", Title: "B", Link: "https://b.example"},
		{Image: "https://x/a.png", Title: "A", Link: ""},
	}, items)
}
