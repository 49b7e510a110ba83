// Package server assembles services, guards and routes into the HTTP API.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventhub/backend/internal/access"
	"github.com/eventhub/backend/internal/analytics"
	"github.com/eventhub/backend/internal/assignments"
	"github.com/eventhub/backend/internal/attendance"
	"github.com/eventhub/backend/internal/auth"
	"github.com/eventhub/backend/internal/catalog"
	"github.com/eventhub/backend/internal/emaillogs"
	"github.com/eventhub/backend/internal/events"
	"github.com/eventhub/backend/internal/masterdata"
	"github.com/eventhub/backend/internal/middleware"
	"github.com/eventhub/backend/internal/modifications"
	"github.com/eventhub/backend/internal/notify"
	"github.com/eventhub/backend/internal/profiles"
	"github.com/eventhub/backend/internal/realtime"
	"github.com/eventhub/backend/internal/sponsorships"
	"github.com/eventhub/backend/pkg/response"
)

// Deps are the collaborators the router wires together. Images, Emails and
// Hub may be nil.
type Deps struct {
	Stores      Stores
	Verifier    auth.TokenVerifier
	Notifier    notify.Notifier
	Emails      notify.EmailQueue
	Images      catalog.ImageStore
	Hub         *realtime.Hub
	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter builds the gin engine with every route and guard.
func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	notifier := d.Notifier
	if notifier == nil {
		notifier = notify.Nop{}
	}
	st := d.Stores

	authn := auth.NewAuthenticator(d.Verifier, st.Profiles)

	catalogSvc := catalog.NewService(st.Catalog, d.Images, logger)
	profileSvc := profiles.NewService(st.Profiles, st.Catalog, notifier, logger)
	eventSvc := events.NewService(st.Events, st.Catalog, st.Profiles, notifier, logger)
	modSvc := modifications.NewService(st.Modifications, st.Events, st.Catalog, notifier, logger)
	sponsorSvc := sponsorships.NewService(st.Sponsorships, st.Events, st.Profiles, notifier, logger)
	masterSvc := masterdata.NewService(st.MasterData, notifier, logger)
	assignSvc := assignments.NewService(st.Assignments, st.Events, st.Profiles, notifier, logger)
	attendSvc := attendance.NewService(st.Attendance, st.Events, st.Assignments, logger)
	analyticsSvc := analytics.NewService(st.Analytics)
	emailLogSvc := emaillogs.NewService(st.EmailLogs, d.Emails, logger)

	catalogH := catalog.NewHandler(catalogSvc, logger)
	profileH := profiles.NewHandler(profileSvc)
	eventH := events.NewHandler(eventSvc)
	modH := modifications.NewHandler(modSvc)
	sponsorH := sponsorships.NewHandler(sponsorSvc)
	masterH := masterdata.NewHandler(masterSvc)
	assignH := assignments.NewHandler(assignSvc)
	attendH := attendance.NewHandler(attendSvc, logger)
	analyticsH := analytics.NewHandler(analyticsSvc)
	emailLogH := emaillogs.NewHandler(emailLogSvc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(d.CORSOrigins))
	router.Use(middleware.Logger(logger))

	health := func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) }
	router.GET("/", health)
	router.GET("/health", health)

	if d.Hub != nil {
		router.GET("/ws", realtime.ServeWs(d.Hub, authn, logger))
	}

	// Onboarding only needs a valid credential: the profile does not exist yet.
	router.POST("/profile", middleware.Credential(authn), profileH.Onboard)

	api := router.Group("")
	api.Use(middleware.Authenticate(authn))

	guard := middleware.Authorize

	api.GET("/profile/me", guard(access.ProfileRead), profileH.Me)

	cat := api.Group("/catalog")
	{
		cat.GET("/categories", guard(access.CatalogRead), catalogH.ListCategories)
		cat.GET("/subtypes", guard(access.CatalogRead), catalogH.ListSubtypes)
		cat.GET("/venues", guard(access.CatalogRead), catalogH.ListVenues)
		cat.GET("/venues/:id", guard(access.CatalogRead), catalogH.GetVenue)
		cat.GET("/venues/:id/image", guard(access.CatalogRead), catalogH.VenueImageURL)
		cat.GET("/venues/:id/availability", guard(access.VenueAvailability), catalogH.Availability)
	}

	ev := api.Group("/events")
	{
		ev.POST("", guard(access.EventCreate), eventH.Create)
		ev.GET("/my-events", guard(access.EventListOwn), eventH.ListMine)
		ev.POST("/modify", guard(access.ModificationPropose), modH.Propose)
		ev.POST("/respond", guard(access.ModificationRespond), modH.Respond)
		ev.GET("/modifications", guard(access.ModificationListReceived), modH.ListForClient)
		ev.GET("/:id", guard(access.EventView), eventH.Get)
	}

	admin := api.Group("/admin")
	{
		admin.GET("/events", guard(access.EventListManaged), eventH.ListManaged)
		admin.PATCH("/events/:id/approve", guard(access.EventApprove), eventH.Approve)
		admin.PATCH("/event-status", guard(access.EventUpdateStatus), eventH.UpdateStatus)
		admin.GET("/modifications", guard(access.ModificationListProposed), modH.ListProposed)

		admin.GET("/sponsorships", guard(access.SponsorshipManage), sponsorH.ListForManager)
		admin.POST("/sponsorships", guard(access.SponsorshipManage), sponsorH.Offer)

		admin.GET("/master-requests", guard(access.MasterRequestCreate), masterH.Mine)
		admin.POST("/master-requests", guard(access.MasterRequestCreate), masterH.Create)

		admin.GET("/employees", guard(access.DirectoryRead), profileH.Employees)
		admin.GET("/employees/pending", guard(access.EmployeeVerify), profileH.PendingEmployees)
		admin.PATCH("/employees/verify", guard(access.EmployeeVerify), profileH.VerifyEmployee)
		admin.GET("/sponsors", guard(access.DirectoryRead), profileH.Sponsors)

		admin.POST("/assign-staff", guard(access.StaffAssign), assignH.Assign)
		admin.GET("/staff", guard(access.StaffAssign), assignH.ListForEvent)
		admin.GET("/attendance", guard(access.AttendanceAudit), attendH.List)
		admin.GET("/attendance/export", guard(access.AttendanceAudit), attendH.Export)
		admin.GET("/analytics", guard(access.AnalyticsDashboard), analyticsH.Dashboard)
	}

	emp := api.Group("/employee", middleware.RequireVerified())
	{
		emp.GET("/assignments", guard(access.AssignmentListOwn), assignH.Mine)
		emp.PATCH("/assignments/respond", guard(access.AssignmentRespond), assignH.Respond)
		emp.POST("/attendance/check-in", guard(access.AttendanceRecord), attendH.CheckIn)
		emp.POST("/attendance/check-out", guard(access.AttendanceRecord), attendH.CheckOut)
	}

	sp := api.Group("/sponsors")
	{
		sp.GET("/requests", guard(access.SponsorshipListOwn), sponsorH.ListForSponsor)
		sp.PATCH("/respond", guard(access.SponsorshipRespond), sponsorH.Respond)
	}
	api.GET("/sponsorships/:id/history", guard(access.SponsorshipHistory), sponsorH.History)

	co := api.Group("/coordinator")
	{
		co.GET("/users", guard(access.UserAdminister), profileH.ListUsers)
		co.GET("/users/pending", guard(access.UserAdminister), profileH.PendingUsers)
		co.PATCH("/users/verify", guard(access.UserAdminister), profileH.VerifyUser)

		co.GET("/categories", guard(access.CatalogManage), catalogH.ListCategories)
		co.POST("/categories", guard(access.CatalogManage), catalogH.CreateCategory)
		co.PUT("/categories/:id", guard(access.CatalogManage), catalogH.UpdateCategory)
		co.DELETE("/categories/:id", guard(access.CatalogManage), catalogH.DeleteCategory)

		co.GET("/subtypes", guard(access.CatalogManage), catalogH.ListSubtypes)
		co.POST("/subtypes", guard(access.CatalogManage), catalogH.CreateSubtype)
		co.PUT("/subtypes/:id", guard(access.CatalogManage), catalogH.UpdateSubtype)
		co.DELETE("/subtypes/:id", guard(access.CatalogManage), catalogH.DeleteSubtype)

		co.GET("/venues", guard(access.CatalogManage), catalogH.ListVenues)
		co.POST("/venues", guard(access.CatalogManage), catalogH.CreateVenue)
		co.PUT("/venues/:id", guard(access.CatalogManage), catalogH.UpdateVenue)
		co.DELETE("/venues/:id", guard(access.CatalogManage), catalogH.DeleteVenue)
		co.POST("/venues/:id/image", guard(access.CatalogManage), catalogH.UploadVenueImage)

		co.GET("/master-requests", guard(access.MasterRequestReview), masterH.List)
		co.PATCH("/master-requests/process", guard(access.MasterRequestReview), masterH.Process)

		co.PATCH("/events/assign-manager", guard(access.EventAssignManager), eventH.AssignManager)

		co.GET("/email-logs", guard(access.EmailLogManage), emailLogH.List)
		co.POST("/email-logs/:id/resend", guard(access.EmailLogManage), emailLogH.Resend)
	}

	api.GET("/analytics/system-overview", guard(access.AnalyticsSystem), analyticsH.SystemOverview)

	return router
}
