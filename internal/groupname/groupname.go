package groupname

import (
	"fmt"
	"strings"
)

// Identity group names follow one of two conventions:
//
//	AWS-A-<account name>-<permission set>  assign in one account
//	AWS-O-<permission set>                 assign in every account
const (
	AccountPrefix      = "AWS-A-"
	OrganizationPrefix = "AWS-O-"
)

type Scope string

const (
	ScopeAccount      Scope = "account"
	ScopeOrganization Scope = "organization"
)

type Group struct {
	Name              string
	Scope             Scope
	AccountName       string // empty for organization groups
	PermissionSetName string
}

type ParseError struct {
	Name   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unrecognized group name [%s] : %s", e.Name, e.Reason)
}

// Parse splits an account group on its last '-', so account names may contain
// dashes and permission set names may not.
func Parse(name string) (Group, error) {
	switch {
	case strings.HasPrefix(name, AccountPrefix):
		rest := strings.TrimPrefix(name, AccountPrefix)
		idx := strings.LastIndex(rest, "-")
		if idx < 0 {
			return Group{}, &ParseError{Name: name, Reason: "missing permission set name"}
		}
		accountName, permissionSetName := rest[:idx], rest[idx+1:]
		if accountName == "" {
			return Group{}, &ParseError{Name: name, Reason: "missing account name"}
		}
		if permissionSetName == "" {
			return Group{}, &ParseError{Name: name, Reason: "missing permission set name"}
		}
		return Group{
			Name:              name,
			Scope:             ScopeAccount,
			AccountName:       accountName,
			PermissionSetName: permissionSetName,
		}, nil
	case strings.HasPrefix(name, OrganizationPrefix):
		permissionSetName := strings.TrimPrefix(name, OrganizationPrefix)
		if permissionSetName == "" {
			return Group{}, &ParseError{Name: name, Reason: "missing permission set name"}
		}
		return Group{
			Name:              name,
			Scope:             ScopeOrganization,
			PermissionSetName: permissionSetName,
		}, nil
	default:
		return Group{}, &ParseError{Name: name, Reason: fmt.Sprintf("expected prefix %s or %s", AccountPrefix, OrganizationPrefix)}
	}
}
