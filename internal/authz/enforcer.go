// Package authz decides whether an actor may act on an owned object.
package authz

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

const (
	ObjectRecipe = "recipe"

	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Enforcer evaluates ownership rules loaded from the embedded policy.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer loads the embedded model and policy.
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("load casbin model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}
	if err := loadEmbeddedPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, err
	}
	return &Enforcer{enforcer: enforcer}, nil
}

// Allowed reports whether actorID may perform action on an object owned by ownerID.
func (e *Enforcer) Allowed(actorID, ownerID uint, object, action string) (bool, error) {
	ok, err := e.enforcer.Enforce(subject(actorID), subject(ownerID), object, action)
	if err != nil {
		return false, fmt.Errorf("enforce %s %s: %w", action, object, err)
	}
	return ok, nil
}

func subject(id uint) string {
	if id == 0 {
		return "anonymous"
	}
	return strconv.FormatUint(uint64(id), 10)
}

func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if parts[0] != "p" || len(parts) != 4 {
			return fmt.Errorf("malformed policy line %q", line)
		}
		if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
			return fmt.Errorf("add policy %v: %w", parts[1:], err)
		}
	}
	return nil
}
