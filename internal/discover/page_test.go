package discover_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-adala-mirror/internal/discover"
	"go-adala-mirror/internal/fetch"
	"go-adala-mirror/internal/rules"
)

const categoryHTML = `<html><body>
<div class="category-item"><span class="title">القوانين</span><a href="/resources/folders/12">فتح</a></div>
<div class="category-item"><span class="title">الاجتهاد القضائي</span><a href="/resources/folders/569">فتح</a></div>
<div class="category-item"><span class="title">بدون رابط</span><a href="/about">فتح</a></div>
</body></html>`

func TestParseCategoryPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(categoryHTML))
	}))
	defer srv.Close()

	cl, err := fetch.New(fetch.Options{Timeout: 2 * time.Second})
	if err != nil { t.Fatalf("new client: %v", err) }
	preset := rules.Preset{CategoryPage: &rules.CategoryPage{
		Item: ".category-item",
		Name: ".title||.",
		Link: "a@href||@href",
	}}
	list, err := discover.ParseCategoryPage(context.Background(), cl, srv.URL, preset)
	if err != nil { t.Fatalf("parse: %v", err) }
	// /about 无数字 id，应被丢弃
	if len(list) != 2 { t.Fatalf("list = %+v", list) }
	if list[0].ID != "12" || list[0].Name != "القوانين" { t.Fatalf("first = %+v", list[0]) }
	if list[1].ID != "569" { t.Fatalf("second = %+v", list[1]) }
}

func TestParseCategoryPage_NoPreset(t *testing.T) {
	cl, err := fetch.New(fetch.Options{Timeout: time.Second})
	if err != nil { t.Fatalf("new client: %v", err) }
	list, err := discover.ParseCategoryPage(context.Background(), cl, "http://unused", rules.Preset{})
	if err != nil || list != nil { t.Fatalf("expected nil/nil, got %v %v", list, err) }
}
