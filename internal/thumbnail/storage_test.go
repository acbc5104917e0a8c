package thumbnail_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/internal/thumbnail"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

var _ = Describe("Thumbnail storage", func() {
	Describe("ExtensionFor", func() {
		It("maps accepted image types", func() {
			ext, err := thumbnail.ExtensionFor("image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(ext).To(Equal(".png"))

			ext, err = thumbnail.ExtensionFor("IMAGE/JPEG; charset=binary")
			Expect(err).NotTo(HaveOccurred())
			Expect(ext).To(Equal(".jpg"))
		})

		It("rejects anything else", func() {
			_, err := thumbnail.ExtensionFor("application/pdf")
			Expect(err).To(MatchError(thumbnail.ErrInvalidImage))
		})
	})

	It("generates prefixed unique keys", func() {
		a := thumbnail.NewKey(".png")
		b := thumbnail.NewKey(".png")
		Expect(a).To(HavePrefix("thumbnails/"))
		Expect(a).To(HaveSuffix(".png"))
		Expect(a).NotTo(Equal(b))
	})

	Context("when no bucket is configured", func() {
		var store thumbnail.Store

		BeforeEach(func() {
			var err error
			store, err = thumbnail.New(context.Background(), internal.StorageConfig{})
			Expect(err).NotTo(HaveOccurred())
		})

		It("refuses uploads", func() {
			_, err := store.Upload(context.Background(), "image/png", strings.NewReader("png"))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeStorageDisabled))
		})

		It("treats removal as a no-op", func() {
			Expect(store.Remove(context.Background(), "thumbnails/x.png")).To(Succeed())
		})
	})

	Context("against an S3-compatible endpoint", func() {
		var (
			server   *httptest.Server
			mu       sync.Mutex
			requests []recordedRequest
			store    *thumbnail.S3Store
		)

		BeforeEach(func() {
			requests = nil
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				mu.Lock()
				requests = append(requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)})
				mu.Unlock()
				if r.Method == http.MethodDelete {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				w.WriteHeader(http.StatusOK)
			}))

			var err error
			store, err = thumbnail.NewS3Store(context.Background(), internal.StorageConfig{
				S3Bucket:    "store",
				S3Region:    "us-east-1",
				S3Endpoint:  server.URL,
				S3AccessKey: "key",
				S3SecretKey: "secret",
				PublicURL:   "https://cdn.example.com/",
			})
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			server.Close()
		})

		It("uploads under the bucket and returns the public url", func() {
			obj, err := store.Upload(context.Background(), "image/png", strings.NewReader("png-bytes"))
			Expect(err).NotTo(HaveOccurred())
			Expect(obj.ID).To(HavePrefix("thumbnails/"))
			Expect(obj.URL).To(Equal("https://cdn.example.com/" + obj.ID))

			mu.Lock()
			defer mu.Unlock()
			Expect(requests).To(HaveLen(1))
			Expect(requests[0].Method).To(Equal(http.MethodPut))
			Expect(requests[0].Path).To(Equal("/store/" + obj.ID))
		})

		It("deletes by key", func() {
			Expect(store.Remove(context.Background(), "thumbnails/old.png")).To(Succeed())

			mu.Lock()
			defer mu.Unlock()
			Expect(requests).To(HaveLen(1))
			Expect(requests[0].Method).To(Equal(http.MethodDelete))
			Expect(requests[0].Path).To(Equal("/store/thumbnails/old.png"))
		})

		It("ignores empty keys", func() {
			Expect(store.Remove(context.Background(), "")).To(Succeed())
			mu.Lock()
			defer mu.Unlock()
			Expect(requests).To(BeEmpty())
		})
	})
})
