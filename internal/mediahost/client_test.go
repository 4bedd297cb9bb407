package mediahost_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	"github.com/frahmantamala/ad-management/internal/core/events"
	"github.com/frahmantamala/ad-management/internal/mediahost"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type persistedURL struct {
	GraphicID int64
	URL       string
}

var _ = Describe("Media Host Client", func() {
	var (
		server    *httptest.Server
		client    *mediahost.Client
		persisted chan persistedURL
		filePath  string
	)

	BeforeEach(func() {
		dir, err := os.MkdirTemp("", "mediahost")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { os.RemoveAll(dir) })

		filePath = filepath.Join(dir, "banner.png")
		Expect(os.WriteFile(filePath, []byte("fake image bytes"), 0o644)).To(Succeed())

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/upload"))
			Expect(r.Header.Get("Content-Type")).To(ContainSubstring("multipart/form-data"))

			file, header, err := r.FormFile("file")
			Expect(err).NotTo(HaveOccurred())
			file.Close()

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]string{
					"url": "https://cdn.example.com/" + header.Filename,
				},
			})
		}))
		DeferCleanup(server.Close)

		persisted = make(chan persistedURL, 10)

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		client = mediahost.NewClient(mediahost.Config{
			APIURL:        server.URL,
			UploadTimeout: 5 * time.Second,
			MaxWorkers:    2,
		}, mediahost.NewCompressor("", "", 60), func(ctx context.Context, graphicID int64, fileURL string) error {
			persisted <- persistedURL{GraphicID: graphicID, URL: fileURL}
			return nil
		}, slogger)
		DeferCleanup(client.Shutdown)
	})

	It("should host an image and persist its public url", func() {
		err := client.Enqueue(mediahost.Job{
			GraphicID: 5,
			FilePath:  filePath,
			FileType:  "image/png",
		})
		Expect(err).NotTo(HaveOccurred())

		var got persistedURL
		Eventually(persisted, 5*time.Second).Should(Receive(&got))
		Expect(got.GraphicID).To(Equal(int64(5)))
		Expect(got.URL).To(Equal("https://cdn.example.com/banner.png"))
	})

	It("should pick up jobs from upload events", func() {
		event := events.NewGraphicUploadedEvent(7, filePath, "image/png")

		err := client.HandleGraphicUploaded(context.Background(), event)
		Expect(err).NotTo(HaveOccurred())

		var got persistedURL
		Eventually(persisted, 5*time.Second).Should(Receive(&got))
		Expect(got.GraphicID).To(Equal(int64(7)))
	})

	It("should reject an event with an unexpected payload", func() {
		event := events.BaseEvent{
			ID:        "x",
			Type:      events.TypeGraphicUploaded,
			Timestamp: time.Now(),
			Data:      map[string]interface{}{"file_path": filePath},
		}

		err := client.HandleGraphicUploaded(context.Background(), event)
		Expect(err).To(HaveOccurred())
	})
})
