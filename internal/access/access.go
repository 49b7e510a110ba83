// Package access holds the role capability table checked by the route guard.
package access

import (
	"sort"

	"github.com/eventhub/backend/internal/models"
)

// Operation names a guarded action.
type Operation string

const (
	ProfileRead Operation = "profile.read"
	CatalogRead Operation = "catalog.read"

	EventCreate        Operation = "event.create"
	EventListOwn       Operation = "event.list_own"
	EventView          Operation = "event.view"
	EventListManaged   Operation = "event.list_managed"
	EventApprove       Operation = "event.approve"
	EventUpdateStatus  Operation = "event.update_status"
	EventAssignManager Operation = "event.assign_manager"
	VenueAvailability  Operation = "venue.availability"

	ModificationPropose      Operation = "modification.propose"
	ModificationListProposed Operation = "modification.list_proposed"
	ModificationRespond      Operation = "modification.respond"
	ModificationListReceived Operation = "modification.list_received"

	SponsorshipManage  Operation = "sponsorship.manage"
	SponsorshipRespond Operation = "sponsorship.respond"
	SponsorshipListOwn Operation = "sponsorship.list_own"
	SponsorshipHistory Operation = "sponsorship.history"

	MasterRequestCreate Operation = "master_request.create"
	MasterRequestReview Operation = "master_request.review"
	CatalogManage       Operation = "catalog.manage"
	EmailLogManage      Operation = "email_log.manage"

	EmployeeVerify  Operation = "employee.verify"
	DirectoryRead   Operation = "directory.read"
	UserAdminister  Operation = "user.administer"
	StaffAssign     Operation = "staff.assign"
	AttendanceAudit Operation = "attendance.audit"

	AssignmentListOwn Operation = "assignment.list_own"
	AssignmentRespond Operation = "assignment.respond"
	AttendanceRecord  Operation = "attendance.record"

	AnalyticsDashboard Operation = "analytics.dashboard"
	AnalyticsSystem    Operation = "analytics.system"
)

var (
	allRoles    = models.Roles
	client      = []models.Role{models.RoleClient}
	manager     = []models.Role{models.RoleManager}
	employee    = []models.Role{models.RoleEmployee}
	sponsor     = []models.Role{models.RoleSponsor}
	coordinator = []models.Role{models.RoleChiefCoordinator}
)

// Table maps each operation to the roles allowed to perform it.
var Table = map[Operation][]models.Role{
	ProfileRead: allRoles,
	CatalogRead: allRoles,

	EventCreate:        client,
	EventListOwn:       client,
	EventView:          {models.RoleClient, models.RoleManager, models.RoleChiefCoordinator},
	EventListManaged:   manager,
	EventApprove:       manager,
	EventUpdateStatus:  manager,
	EventAssignManager: coordinator,
	VenueAvailability:  {models.RoleClient, models.RoleManager, models.RoleChiefCoordinator},

	ModificationPropose:      manager,
	ModificationListProposed: manager,
	ModificationRespond:      client,
	ModificationListReceived: client,

	SponsorshipManage:  manager,
	SponsorshipRespond: sponsor,
	SponsorshipListOwn: sponsor,
	SponsorshipHistory: {models.RoleManager, models.RoleSponsor},

	MasterRequestCreate: manager,
	MasterRequestReview: coordinator,
	CatalogManage:       coordinator,
	EmailLogManage:      coordinator,

	EmployeeVerify:  manager,
	DirectoryRead:   manager,
	UserAdminister:  coordinator,
	StaffAssign:     manager,
	AttendanceAudit: manager,

	AssignmentListOwn: employee,
	AssignmentRespond: employee,
	AttendanceRecord:  employee,

	AnalyticsDashboard: manager,
	AnalyticsSystem:    coordinator,
}

// Allowed reports whether role may perform op. Unknown operations are denied.
func Allowed(role models.Role, op Operation) bool {
	for _, r := range Table[op] {
		if r == role {
			return true
		}
	}
	return false
}

// Permissions lists the operations role may perform, sorted.
func Permissions(role models.Role) []Operation {
	ops := []Operation{}
	for op, roles := range Table {
		for _, r := range roles {
			if r == role {
				ops = append(ops, op)
				break
			}
		}
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}
