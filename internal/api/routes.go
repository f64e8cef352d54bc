package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"minami/training-system/internal/domain"
	"minami/training-system/internal/repository"
	"minami/training-system/internal/service"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	userRepo repository.UserRepository,
	authService service.AuthService,
	planService service.PlanTemplateService,
	trainingService service.TrainingService,
	accountService service.AccountService,
	reportService service.ReportService,
	questionService service.QuestionService,
) {
	authHandler := NewAuthHandler(authService)
	planHandler := NewPlanHandler(planService)
	trainingHandler := NewTrainingHandler(trainingService)
	accountHandler := NewAccountHandler(accountService)
	reportHandler := NewReportHandler(reportService)
	questionHandler := NewQuestionHandler(questionService)

	authMiddleware := AuthMiddleware(jwtSecret, userRepo)
	staffOnly := RoleMiddleware(domain.RoleAdmin, domain.RoleTeacher)
	studentOnly := RoleMiddleware(domain.RoleStudent)
	teacherOnly := RoleMiddleware(domain.RoleTeacher)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			user, err := currentUser(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
				return
			}
			c.JSON(http.StatusOK, mapUserToResponse(user))
		})

		// --- Plan Template Authoring (staff only) ---
		planGroup := protected.Group("/plans")
		planGroup.Use(staffOnly)
		{
			planGroup.GET("", planHandler.ListTemplates)
			planGroup.POST("", planHandler.CreatePlan)
			planGroup.GET("/:planId", planHandler.GetTemplate)
			planGroup.PUT("/:planId", planHandler.UpdatePlan)
			planGroup.DELETE("/:planId", planHandler.DeletePlan)

			planGroup.POST("/sections", planHandler.AddSection)
			planGroup.PUT("/sections/:sectionId", planHandler.UpdateSection)
			planGroup.DELETE("/sections/:sectionId", planHandler.DeleteSection)

			planGroup.POST("/topics", planHandler.AddTopic)
			planGroup.PUT("/topics/:topicId", planHandler.UpdateTopic)
			planGroup.DELETE("/topics/:topicId", planHandler.DeleteTopic)

			planGroup.POST("/todos", planHandler.AddTodo)
			planGroup.PUT("/todos/:todoId", planHandler.UpdateTodo)
			planGroup.DELETE("/todos/:todoId", planHandler.DeleteTodo)
		}

		// --- Training Plans & Tasks ---
		trainingGroup := protected.Group("/training")
		{
			trainingGroup.POST("/plans", staffOnly, trainingHandler.AssignPlan)
			trainingGroup.DELETE("/plans/:trainingPlanId", staffOnly, trainingHandler.DeletePlan)
			trainingGroup.GET("/students/:studentId/plans", trainingHandler.ListForStudent)
			trainingGroup.GET("/me/plans", studentOnly, trainingHandler.ListMine)
			trainingGroup.PUT("/tasks/:taskId", trainingHandler.UpdateTask)
			trainingGroup.GET("/stats", staffOnly, trainingHandler.GetStats)
		}

		// --- Accounts (staff dashboards; detail view is visibility-gated) ---
		accountGroup := protected.Group("/accounts")
		{
			accountGroup.GET("/summary", staffOnly, accountHandler.GetSummary)
			accountGroup.GET("/teachers", accountHandler.ListTeachers)
			accountGroup.GET("", staffOnly, accountHandler.ListAccounts)
			accountGroup.GET("/:userId", accountHandler.GetAccount)
			accountGroup.PUT("/:userId/training-status", staffOnly, accountHandler.UpdateTrainingStatus)
		}

		// --- Daily Reports ---
		reportGroup := protected.Group("/reports")
		{
			reportGroup.POST("", studentOnly, reportHandler.CreateReport)
			reportGroup.PUT("/:reportId", studentOnly, reportHandler.UpdateReport)
			reportGroup.GET("/me", studentOnly, reportHandler.ListMine)
			reportGroup.GET("/students/:studentId", reportHandler.ListForStudent)
			reportGroup.POST("/:reportId/feedback", teacherOnly, reportHandler.ReplyFeedback)
			reportGroup.POST("/:reportId/attachments", studentOnly, reportHandler.RequestAttachmentUpload)
			reportGroup.GET("/attachments/:attachmentId/download", reportHandler.GetAttachmentDownloadURL)
		}

		// --- Questions ---
		questionGroup := protected.Group("/questions")
		{
			questionGroup.POST("", studentOnly, questionHandler.CreateQuestion)
			questionGroup.PUT("/:questionId", studentOnly, questionHandler.UpdateQuestion)
			questionGroup.GET("/me", studentOnly, questionHandler.ListMine)
			questionGroup.GET("/students/:studentId", questionHandler.ListForStudent)
			questionGroup.POST("/:questionId/feedback", teacherOnly, questionHandler.ReplyFeedback)
		}
	}
}
