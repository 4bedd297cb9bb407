package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/frahmantamala/ad-management/internal"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

// Mock OwnerResolver for testing
type mockOwnerResolver struct {
	owners        map[int64]int64 // resource id -> owner user id
	notFoundErr   error
	returnError   bool
	errorToReturn error
}

func newMockOwnerResolver(notFoundErr error) *mockOwnerResolver {
	return &mockOwnerResolver{
		owners:      make(map[int64]int64),
		notFoundErr: notFoundErr,
	}
}

func (m *mockOwnerResolver) ResolveOwner(ctx context.Context, resourceID int64) (int64, error) {
	if m.returnError {
		return 0, m.errorToReturn
	}

	if ownerID, exists := m.owners[resourceID]; exists {
		return ownerID, nil
	}
	return 0, m.notFoundErr
}

func (m *mockOwnerResolver) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

func (m *mockOwnerResolver) clearError() {
	m.returnError = false
	m.errorToReturn = nil
}

var _ = ginkgo.Describe("Authorization Engine", func() {
	var (
		adResolver *mockOwnerResolver
		engine     *Engine
		advertiser *User
		admin      *User
	)

	callerCtx := func(u *User) context.Context {
		return ContextWithUser(context.Background(), u, 1)
	}

	ginkgo.BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		adResolver = newMockOwnerResolver(internal.ErrAdNotFound)
		adResolver.owners[1] = 10
		adResolver.owners[2] = 20

		engine = NewEngine(DefaultRules(), map[Resource]OwnerResolver{
			ResourceAd: adResolver,
		}, slogger)

		advertiser = &User{ID: 10, Email: "advertiser@example.com", Role: RoleAdvertiser}
		admin = &User{ID: 99, Email: "admin@example.com", Role: RoleAdmin}
	})

	ginkgo.Context("authentication", func() {
		ginkgo.It("should deny when no caller is in context", func() {
			err := engine.Authorize(context.Background(), ResourceAd, ActionRead, 1)
			gomega.Expect(err).To(gomega.Equal(internal.ErrNotAuthenticated))
		})
	})

	ginkgo.Context("rule lookup", func() {
		ginkgo.It("should deny when no rule covers the resource", func() {
			err := engine.Authorize(callerCtx(advertiser), Resource("Campaign"), ActionRead, 1)
			gomega.Expect(err).To(gomega.Equal(internal.ErrNoPermissionRule))
		})

		ginkgo.It("should prefer the exact rule over the bare resource rule", func() {
			// Given a table where Ad is open to everyone except for delete
			rules := NewRules(
				map[RuleKey]Rule{
					{Resource: ResourceAd, Action: ActionDelete}: {Roles: roleSet(RoleAdmin)},
				},
				map[Resource]Rule{
					ResourceAd: {Roles: roleSet(AllRoles...)},
				},
			)
			slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
			custom := NewEngine(rules, nil, slogger)

			// Then the bare rule still covers other actions
			err := custom.Authorize(callerCtx(advertiser), ResourceAd, ActionRead, 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			// And the exact rule wins for delete
			err = custom.Authorize(callerCtx(advertiser), ResourceAd, ActionDelete, 1)
			gomega.Expect(err).To(gomega.Equal(internal.ErrRoleNotAllowed))

			err = custom.Authorize(callerCtx(admin), ResourceAd, ActionDelete, 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})
	})

	ginkgo.Context("role checks", func() {
		ginkgo.It("should deny a non-admin touching user management", func() {
			err := engine.Authorize(callerCtx(advertiser), ResourceUser, ActionRead, 1)
			gomega.Expect(err).To(gomega.Equal(internal.ErrRoleNotAllowed))
		})

		ginkgo.It("should allow an admin to manage users", func() {
			err := engine.Authorize(callerCtx(admin), ResourceUser, ActionRead, 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})
	})

	ginkgo.Context("ownership checks", func() {
		ginkgo.It("should allow the owner to update their ad", func() {
			err := engine.Authorize(callerCtx(advertiser), ResourceAd, ActionUpdate, 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})

		ginkgo.It("should deny updating someone else's ad", func() {
			err := engine.Authorize(callerCtx(advertiser), ResourceAd, ActionUpdate, 2)
			gomega.Expect(err).To(gomega.Equal(internal.ErrNotResourceOwner))
		})

		ginkgo.It("should deny deleting someone else's ad", func() {
			err := engine.Authorize(callerCtx(advertiser), ResourceAd, ActionDelete, 2)
			gomega.Expect(err).To(gomega.Equal(internal.ErrNotResourceOwner))
		})

		ginkgo.It("should never consult ownership for create", func() {
			// Given a rule that nominally requires ownership on create
			rules := NewRules(
				map[RuleKey]Rule{
					{Resource: ResourceAd, Action: ActionCreate}: {Roles: roleSet(AllRoles...), RequireOwnership: true},
				},
				nil,
			)
			slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
			adResolver.setError(errors.New("resolver must not be called"))
			defer adResolver.clearError()
			custom := NewEngine(rules, map[Resource]OwnerResolver{ResourceAd: adResolver}, slogger)

			// When create is authorized
			err := custom.Authorize(callerCtx(advertiser), ResourceAd, ActionCreate, 0)

			// Then the resolver was never reached
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})

		ginkgo.It("should deny when the resource does not exist", func() {
			err := engine.Authorize(callerCtx(advertiser), ResourceAd, ActionUpdate, 999)
			gomega.Expect(err).To(gomega.Equal(internal.ErrNotResourceOwner))
		})

		ginkgo.It("should surface resolver storage failures as internal errors", func() {
			adResolver.setError(errors.New("database connection failed"))
			defer adResolver.clearError()

			err := engine.Authorize(callerCtx(advertiser), ResourceAd, ActionUpdate, 1)
			gomega.Expect(err).To(gomega.HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.StatusCode).To(gomega.Equal(http.StatusInternalServerError))
		})

		ginkgo.It("should fail closed when no resolver is configured", func() {
			err := engine.Authorize(callerCtx(advertiser), ResourceAdGraphic, ActionUpdate, 1)
			gomega.Expect(err).To(gomega.HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.StatusCode).To(gomega.Equal(http.StatusInternalServerError))
		})
	})

	ginkgo.Context("default rule table", func() {
		ginkgo.It("should let every role read and create ads", func() {
			for _, role := range AllRoles {
				caller := &User{ID: 10, Role: role}
				gomega.Expect(engine.Authorize(callerCtx(caller), ResourceAd, ActionRead, 1)).To(gomega.Succeed())
				gomega.Expect(engine.Authorize(callerCtx(caller), ResourceAd, ActionCreate, 0)).To(gomega.Succeed())
			}
		})
	})
})
