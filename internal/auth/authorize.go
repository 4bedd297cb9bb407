package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/ad-management/internal"
	"github.com/frahmantamala/ad-management/internal/transport"
	"github.com/go-chi/chi"
)

// Resource names a protected entity kind. The set is closed; rules and
// owner resolvers are keyed by it.
type Resource string

const (
	ResourceUser        Resource = "User"
	ResourceAd          Resource = "Ad"
	ResourceAdAttribute Resource = "AdAttribute"
	ResourceAdGraphic   Resource = "AdGraphic"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// RuleKey is a typed (resource, action) tuple. Keying rules by struct rather
// than a concatenated string removes a class of typo-driven lookup bugs.
type RuleKey struct {
	Resource Resource
	Action   Action
}

// Rule grants a set of roles, optionally requiring the caller to own the
// target resource instance.
type Rule struct {
	Roles            map[Role]struct{}
	RequireOwnership bool
}

func (r Rule) allows(role Role) bool {
	_, ok := r.Roles[role]
	return ok
}

func roleSet(roles ...Role) map[Role]struct{} {
	set := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Rules is the immutable permission table, fixed at startup. An exact
// (resource, action) entry always takes precedence over the bare-resource
// entry for the same resource.
type Rules struct {
	exact    map[RuleKey]Rule
	resource map[Resource]Rule
}

func NewRules(exact map[RuleKey]Rule, resource map[Resource]Rule) *Rules {
	e := make(map[RuleKey]Rule, len(exact))
	for k, v := range exact {
		e[k] = v
	}
	r := make(map[Resource]Rule, len(resource))
	for k, v := range resource {
		r[k] = v
	}
	return &Rules{exact: e, resource: r}
}

func (r *Rules) lookup(resource Resource, action Action) (Rule, bool) {
	if rule, ok := r.exact[RuleKey{Resource: resource, Action: action}]; ok {
		return rule, true
	}
	rule, ok := r.resource[resource]
	return rule, ok
}

// DefaultRules is the production permission table. Mutating resource
// operations require ownership; user management is admin only.
func DefaultRules() *Rules {
	everyone := roleSet(AllRoles...)

	exact := map[RuleKey]Rule{
		{Resource: ResourceAd, Action: ActionUpdate}:          {Roles: everyone, RequireOwnership: true},
		{Resource: ResourceAd, Action: ActionDelete}:          {Roles: everyone, RequireOwnership: true},
		{Resource: ResourceAdAttribute, Action: ActionUpdate}: {Roles: everyone, RequireOwnership: true},
		{Resource: ResourceAdAttribute, Action: ActionDelete}: {Roles: everyone, RequireOwnership: true},
		{Resource: ResourceAdGraphic, Action: ActionUpdate}:   {Roles: everyone, RequireOwnership: true},
		{Resource: ResourceAdGraphic, Action: ActionDelete}:   {Roles: everyone, RequireOwnership: true},
	}
	resource := map[Resource]Rule{
		ResourceUser:        {Roles: roleSet(RoleAdmin)},
		ResourceAd:          {Roles: everyone},
		ResourceAdAttribute: {Roles: everyone},
		ResourceAdGraphic:   {Roles: everyone},
	}

	return NewRules(exact, resource)
}

// OwnerResolver reports which user owns a resource instance. A missing
// resource must surface as a not-found error, never as owner id zero.
type OwnerResolver interface {
	ResolveOwner(ctx context.Context, resourceID int64) (int64, error)
}

// Engine decides allow/deny for (resource, action) requests. The rule table
// and resolver set are fixed at construction and read concurrently without
// locking.
type Engine struct {
	rules     *Rules
	resolvers map[Resource]OwnerResolver
	logger    *slog.Logger
	base      *transport.BaseHandler
}

func NewEngine(rules *Rules, resolvers map[Resource]OwnerResolver, logger *slog.Logger) *Engine {
	return &Engine{
		rules:     rules,
		resolvers: resolvers,
		logger:    logger,
		base:      transport.NewBaseHandler(logger),
	}
}

// Authorize applies the rule table to the caller in ctx. resourceID is only
// consulted when the matched rule requires ownership and the action is not
// create.
func (e *Engine) Authorize(ctx context.Context, resource Resource, action Action, resourceID int64) error {
	caller, ok := UserFromContext(ctx)
	if !ok {
		return internal.ErrNotAuthenticated
	}

	rule, found := e.rules.lookup(resource, action)
	if !found {
		e.logger.Warn("no permission rule", "resource", resource, "action", action)
		return internal.ErrNoPermissionRule
	}

	if !rule.allows(caller.Role) {
		e.logger.Warn("role not authorized",
			"user_id", caller.ID, "role", caller.Role,
			"resource", resource, "action", action)
		return internal.ErrRoleNotAllowed
	}

	// Nothing exists yet to own on create.
	if !rule.RequireOwnership || action == ActionCreate {
		return nil
	}

	resolver, ok := e.resolvers[resource]
	if !ok {
		return internal.NewInternalError("no owner resolver configured", nil)
	}

	ownerID, err := resolver.ResolveOwner(ctx, resourceID)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeNotFound {
			// a missing resource is a deny, not a server fault
			return internal.ErrNotResourceOwner
		}
		e.logger.Error("ownership resolution failed",
			"resource", resource, "resource_id", resourceID, "error", err)
		return internal.NewInternalError("failed to resolve resource owner", err)
	}

	if ownerID != caller.ID {
		e.logger.Warn("ownership check failed",
			"user_id", caller.ID, "owner_id", ownerID,
			"resource", resource, "resource_id", resourceID)
		return internal.ErrNotResourceOwner
	}

	return nil
}

// Require builds a chi middleware enforcing (resource, action). The target
// resource id is read from the "id" URL parameter; create routes have none.
func (e *Engine) Require(resource Resource, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var resourceID int64
			if raw := chi.URLParam(r, "id"); raw != "" {
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					e.base.WriteError(w, http.StatusBadRequest, "invalid resource id")
					return
				}
				resourceID = id
			}

			if err := e.Authorize(r.Context(), resource, action, resourceID); err != nil {
				e.base.WriteAppError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
