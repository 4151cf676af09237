package gallery

import (
	"reflect"
	"sort"
	"strconv"

	"github.com/alexraskin/hovergallery/internal/models"
)

// SanitizeMenuItems turns a submitted list of key/value records into
// entries, one per element, in the order given. A slice is taken in index
// order; a string-keyed map (a decoded index-keyed form) is taken in
// ascending numeric key order. Any other input yields an empty list.
// Elements that are not records produce an entry with every field empty.
func SanitizeMenuItems(raw any) []models.MenuEntry {
	elems := listElements(raw)
	out := make([]models.MenuEntry, 0, len(elems))
	for _, elem := range elems {
		out = append(out, sanitizeEntry(elem))
	}
	return out
}

func sanitizeEntry(elem any) models.MenuEntry {
	var image, title, link string
	switch v := elem.(type) {
	case models.MenuEntry:
		image, title, link = v.Image, v.Title, v.Link
	case *models.MenuEntry:
		if v != nil {
			image, title, link = v.Image, v.Title, v.Link
		}
	case map[string]string:
		image, title, link = v["image"], v["title"], v["link"]
	case map[string]any:
		image, title, link = scalarString(v["image"]), scalarString(v["title"]), scalarString(v["link"])
	}
	return models.MenuEntry{
		Image: SanitizeURL(image),
		Title: SanitizeText(title),
		Link:  SanitizeURL(link),
	}
}

func listElements(raw any) []any {
	if raw == nil {
		return nil
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil
		}
		elems := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elems = append(elems, rv.Index(i).Interface())
		}
		return elems
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String || isRecord(raw) {
			return nil
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sortIndexKeys(keys)
		elems := make([]any, 0, len(keys))
		for _, k := range keys {
			elems = append(elems, rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
		}
		return elems
	default:
		return nil
	}
}

// isRecord reports whether m looks like a single entry rather than a
// collection of them.
func isRecord(m any) bool {
	switch v := m.(type) {
	case map[string]string:
		return true
	case map[string]any:
		for _, k := range []string{"image", "title", "link"} {
			if _, ok := v[k]; ok {
				return true
			}
		}
	}
	return false
}

// sortIndexKeys orders numeric keys ascending, followed by the rest in
// lexical order.
func sortIndexKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, aErr := strconv.Atoi(keys[i])
		b, bErr := strconv.Atoi(keys[j])
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
}
