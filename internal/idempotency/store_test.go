package idempotency_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/frahmantamala/travel-booking/internal/idempotency"
	"github.com/frahmantamala/travel-booking/internal/transport/middleware"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
)

func TestIdempotency(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Idempotency Suite")
}

var _ = Describe("Key", func() {
	It("should namespace idempotency keys", func() {
		Expect(idempotency.Key("abc")).To(Equal("idempotency:abc"))
	})
})

// These run against a real Redis when TEST_REDIS_ADDR is set.
var _ = Describe("RedisStore", func() {
	var (
		ctx    context.Context
		client *redis.Client
		store  *idempotency.RedisStore
	)

	BeforeEach(func() {
		addr := os.Getenv("TEST_REDIS_ADDR")
		if addr == "" {
			Skip("TEST_REDIS_ADDR not set")
		}
		ctx = context.Background()

		var err error
		client, err = idempotency.Connect(ctx, addr, "", 0)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(client.Close)

		store = idempotency.NewRedisStore(client)
	})

	It("should report unknown keys as not found", func() {
		_, found, err := store.Get(ctx, uuid.NewString())

		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
	})

	It("should let only the first caller reserve a key", func() {
		key := uuid.NewString()
		DeferCleanup(func() { client.Del(context.Background(), idempotency.Key(key)) })

		first, err := store.Reserve(ctx, key, &middleware.IdempotencyEntry{Fingerprint: "a"}, time.Minute)
		Expect(err).NotTo(HaveOccurred())
		second, err := store.Reserve(ctx, key, &middleware.IdempotencyEntry{Fingerprint: "b"}, time.Minute)
		Expect(err).NotTo(HaveOccurred())

		Expect(first).To(BeTrue())
		Expect(second).To(BeFalse())

		got, found, err := store.Get(ctx, key)
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())
		Expect(got.Fingerprint).To(Equal("a"))
		Expect(got.InProgress()).To(BeTrue())
	})

	It("should replace the reservation with the completed response", func() {
		key := uuid.NewString()
		DeferCleanup(func() { client.Del(context.Background(), idempotency.Key(key)) })

		_, err := store.Reserve(ctx, key, &middleware.IdempotencyEntry{Fingerprint: "a"}, time.Minute)
		Expect(err).NotTo(HaveOccurred())
		done := &middleware.IdempotencyEntry{
			Fingerprint: "a",
			Response:    &middleware.CachedResponse{StatusCode: 200, ContentType: "application/json", Body: []byte(`{"a":1}`)},
		}
		Expect(store.Complete(ctx, key, done, time.Hour)).To(Succeed())

		got, found, err := store.Get(ctx, key)
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())
		Expect(got.InProgress()).To(BeFalse())
		Expect(got.Response.StatusCode).To(Equal(200))
		Expect(string(got.Response.Body)).To(Equal(`{"a":1}`))
		Expect(client.TTL(ctx, idempotency.Key(key)).Val()).To(BeNumerically(">", time.Minute))
	})

	It("should free a released key", func() {
		key := uuid.NewString()
		DeferCleanup(func() { client.Del(context.Background(), idempotency.Key(key)) })

		_, err := store.Reserve(ctx, key, &middleware.IdempotencyEntry{Fingerprint: "a"}, time.Minute)
		Expect(err).NotTo(HaveOccurred())
		Expect(store.Release(ctx, key)).To(Succeed())

		again, err := store.Reserve(ctx, key, &middleware.IdempotencyEntry{Fingerprint: "a"}, time.Minute)
		Expect(err).NotTo(HaveOccurred())
		Expect(again).To(BeTrue())
	})
})
