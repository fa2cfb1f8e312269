package handler

import "github.com/gin-gonic/gin"

// Handlers groups every HTTP handler mounted under the API prefix.
type Handlers struct {
	Branches  *BranchHandler
	Schedules *BranchScheduleHandler
	Teachers  *TeacherHandler
	Roster    *RosterHandler
	TimeSlots *TimeSlotHandler
	Exports   *ExportHandler
}

// Register mounts the API routes on group.
func Register(group *gin.RouterGroup, h Handlers) {
	branches := group.Group("/branches")
	branches.GET("", h.Branches.List)
	branches.POST("", h.Branches.Create)
	branches.GET("/available", h.Branches.Available)
	branches.GET("/:id", h.Branches.Get)
	branches.PUT("/:id", h.Branches.Update)
	branches.DELETE("/:id", h.Branches.Delete)

	schedules := group.Group("/branch-schedules")
	schedules.GET("", h.Schedules.List)
	schedules.POST("", h.Schedules.Create)
	schedules.DELETE("/:id", h.Schedules.Delete)

	teachers := group.Group("/teachers")
	teachers.GET("", h.Teachers.List)
	teachers.POST("", h.Teachers.Create)
	teachers.GET("/:id", h.Teachers.Get)
	teachers.PUT("/:id", h.Teachers.Update)
	teachers.DELETE("/:id", h.Teachers.Delete)
	teachers.GET("/:id/assignments", h.Teachers.ListAssignments)
	teachers.POST("/:id/assignments", h.Teachers.Assign)
	teachers.DELETE("/:id/assignments", h.Teachers.Unassign)
	teachers.DELETE("/:id/assignments/all", h.Teachers.UnassignAll)

	roster := group.Group("/roster")
	roster.GET("/grid", h.Roster.Grid)
	roster.GET("/available-branches", h.Roster.AvailableBranches)
	roster.GET("/available-teachers", h.Roster.AvailableTeachers)
	roster.GET("/conflicts", h.Roster.Conflicts)
	roster.GET("/overview", h.Roster.Overview)
	roster.GET("/assignment", h.Roster.Assignment)

	slots := group.Group("/time-slots")
	slots.GET("", h.TimeSlots.List)
	slots.POST("", h.TimeSlots.Create)
	slots.PUT("/:id", h.TimeSlots.Update)
	slots.DELETE("/:id", h.TimeSlots.Delete)

	exports := group.Group("/exports")
	exports.POST("", h.Exports.Create)
	exports.GET("/download/:token", h.Exports.Download)
	exports.GET("/:id", h.Exports.Get)
}
