package models

import (
	"fmt"
	"sort"
	"strings"
)

// Role identifies what a user is allowed to do.
type Role string

const (
	RoleStudent    Role = "student"
	RoleTeacher    Role = "teacher"
	RoleAccountant Role = "accountant"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
)

// IsStaff reports whether the role sees and edits every teacher's calendar.
func (r Role) IsStaff() bool {
	return r == RoleManager || r == RoleAdmin
}

// RoleTable maps every known role to the rank used when seeding default
// permissions. Ranks carry no ordering meaning at request time.
type RoleTable struct {
	ranks map[Role]int
}

// NewRoleTable builds a table from explicit ranks.
func NewRoleTable(ranks map[Role]int) RoleTable {
	copied := make(map[Role]int, len(ranks))
	for role, rank := range ranks {
		copied[role] = rank
	}
	return RoleTable{ranks: copied}
}

// DefaultRoleTable returns the stock role set.
func DefaultRoleTable() RoleTable {
	return NewRoleTable(map[Role]int{
		RoleStudent:    1,
		RoleTeacher:    2,
		RoleAccountant: 3,
		RoleManager:    4,
		RoleAdmin:      5,
	})
}

// Rank returns the seeding rank for role.
func (t RoleTable) Rank(role Role) (int, bool) {
	rank, ok := t.ranks[role]
	return rank, ok
}

// Parse resolves a case-insensitive role name.
func (t RoleTable) Parse(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := t.ranks[role]; !ok {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return role, nil
}

// Roles lists known roles ordered by rank.
func (t RoleTable) Roles() []Role {
	roles := make([]Role, 0, len(t.ranks))
	for role := range t.ranks {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return t.ranks[roles[i]] < t.ranks[roles[j]] })
	return roles
}
