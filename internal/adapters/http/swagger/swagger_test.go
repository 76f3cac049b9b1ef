package swagger_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/openbi/rankindex/internal/adapters/http/swagger"
)

func TestRegister(t *testing.T) {
	Convey("Given a router with documentation routes", t, func() {
		r := chi.NewRouter()
		swagger.Register(r)
		ts := httptest.NewServer(r)
		defer ts.Close()

		Convey("When fetching /api-docs", func() {
			resp, err := http.Get(ts.URL + "/api-docs")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			Convey("Then the ReDoc page references the spec", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Header.Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(string(body), ShouldContainSubstring, "/openapi.yaml")
			})
		})

		Convey("When fetching /openapi.yaml", func() {
			resp, err := http.Get(ts.URL + "/openapi.yaml")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			Convey("Then the embedded spec is served", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Header.Get("Content-Type"), ShouldContainSubstring, "yaml")
				So(string(body), ShouldContainSubstring, "openapi: 3.0.3")
				So(string(body), ShouldContainSubstring, "/industry/{industry}/rankings")
			})
		})
	})
}
