package rbac

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
)

// Resources guarded by the policy table
const (
	ResourceUsers         = "users"
	ResourceDoctors       = "doctors"
	ResourcePatients      = "patients"
	ResourceStaff         = "staff"
	ResourceAppointments  = "appointments"
	ResourceWards         = "wards"
	ResourceMedicines     = "medicines"
	ResourcePrescriptions = "prescriptions"
	ResourceBilling       = "billing"
	ResourceReports       = "reports"
	ResourceDashboards    = "dashboards"
)

// Policy maps a resource to the HTTP methods a role may use on it
type Policy map[string][]string

var (
	read      = []string{http.MethodGet}
	readWrite = []string{http.MethodGet, http.MethodPut}
	all       = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}
)

// DefaultPolicies is the static role table. Admin is not listed; it matches everything.
var DefaultPolicies = map[model.Role]Policy{
	model.RoleDoctor: {
		ResourceDoctors:       readWrite,
		ResourcePatients:      readWrite,
		ResourceAppointments:  {http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch},
		ResourcePrescriptions: {http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch},
		ResourceMedicines:     read,
		ResourceWards:         read,
		ResourceDashboards:    read,
	},
	model.RoleNurse: {
		ResourcePatients:      readWrite,
		ResourceWards:         {http.MethodGet, http.MethodPost, http.MethodPut},
		ResourceAppointments:  read,
		ResourceMedicines:     read,
		ResourcePrescriptions: read,
		ResourceDashboards:    read,
	},
	model.RoleReceptionist: {
		ResourcePatients:     {http.MethodGet, http.MethodPost, http.MethodPut},
		ResourceAppointments: {http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch},
		ResourceDoctors:      read,
		ResourceWards:        {http.MethodGet, http.MethodPost},
		ResourceBilling:      {http.MethodGet, http.MethodPost, http.MethodPut},
		ResourceDashboards:   read,
	},
	model.RolePharmacist: {
		ResourceMedicines:     {http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch},
		ResourcePrescriptions: {http.MethodGet, http.MethodPut, http.MethodPatch},
		ResourcePatients:      read,
		ResourceDashboards:    read,
		ResourceReports:       read,
	},
	model.RolePatient: {
		ResourceAppointments:  {http.MethodGet, http.MethodPost},
		ResourceDoctors:       read,
		ResourcePrescriptions: read,
		ResourceBilling:       read,
		ResourcePatients:      readWrite,
		ResourceDashboards:    read,
	},
}

type Service struct {
	policies map[model.Role]Policy
}

func NewService(policies map[model.Role]Policy) *Service {
	if policies == nil {
		policies = DefaultPolicies
	}
	return &Service{policies: policies}
}

// Authorize allows the request iff the role lists both the resource and the method.
// The error names what the role may do instead.
func (s *Service) Authorize(role model.Role, resource, method string) error {
	if role == model.RoleAdmin {
		return nil
	}

	policy := s.policies[role]
	methods, ok := policy[resource]
	if !ok {
		return apperrors.Forbidden(
			fmt.Sprintf("role %s is not allowed to access %s", role, resource),
			s.Resources(role),
		)
	}
	for _, m := range methods {
		if m == method {
			return nil
		}
	}
	return apperrors.Forbidden(
		fmt.Sprintf("role %s is not allowed to %s %s", role, method, resource),
		methods,
	)
}

// Resources lists the resources a role may touch, sorted
func (s *Service) Resources(role model.Role) []string {
	policy := s.policies[role]
	resources := make([]string, 0, len(policy))
	for r := range policy {
		resources = append(resources, r)
	}
	sort.Strings(resources)
	return resources
}

// Permissions returns the role's table; Admin gets every method on every resource
func (s *Service) Permissions(role model.Role) Policy {
	if role == model.RoleAdmin {
		p := Policy{}
		for _, r := range []string{ResourceUsers, ResourceDoctors, ResourcePatients, ResourceStaff,
			ResourceAppointments, ResourceWards, ResourceMedicines, ResourcePrescriptions,
			ResourceBilling, ResourceReports, ResourceDashboards} {
			p[r] = all
		}
		return p
	}
	return s.policies[role]
}
