package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/travel-booking/internal/core/datamodel/payment"
)

var _ = ginkgo.Describe("StaleReport", func() {
	var (
		ctx    context.Context
		report *StaleReport
		now    time.Time
		insert func(txID, status string, age time.Duration)
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

		db := openTestDB()
		sqlDB, err := db.DB()
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		report = NewStaleReport(sqlx.NewDb(sqlDB, "sqlite3"))

		insert = func(txID, status string, age time.Duration) {
			p := newPayment("BK-1", txID)
			p.Status = status
			p.CreatedAt = now.Add(-age)
			gomega.Expect(db.Create(p).Error).ToNot(gomega.HaveOccurred())
		}
	})

	ginkgo.It("should list only pending payments older than the threshold", func() {
		insert("TX-old", payment.StatusPending, 2*time.Hour)
		insert("TX-older", payment.StatusPending, 3*time.Hour)
		insert("TX-fresh", payment.StatusPending, 5*time.Minute)
		insert("TX-failed", payment.StatusFailed, 4*time.Hour)

		rows, err := report.Pending(ctx, 30*time.Minute, now)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(rows).To(gomega.HaveLen(2))
		gomega.Expect(rows[0].TransactionID).To(gomega.Equal("TX-older"))
		gomega.Expect(rows[1].TransactionID).To(gomega.Equal("TX-old"))
		gomega.Expect(rows[0].Amount.String()).To(gomega.Equal("100.5"))
	})

	ginkgo.It("should return nothing when every pending payment is recent", func() {
		insert("TX-fresh", payment.StatusPending, time.Minute)

		rows, err := report.Pending(ctx, time.Hour, now)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(rows).To(gomega.BeEmpty())
	})

	ginkgo.It("should reject a non-positive threshold", func() {
		_, err := report.Pending(ctx, 0, now)

		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})
