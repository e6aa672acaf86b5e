package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"greendex/clients"
	"greendex/config"
	"greendex/models"
	"greendex/services"
	"greendex/storage"
)

var newProjectsCounter prometheus.Counter

func init() {
	newProjectsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "greendex_new_projects_total",
			Help: "Total number of new projects added to the database.",
		},
	)
	prometheus.MustRegister(newProjectsCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to projects database.")

	logging.Info("Running database auto-migration...")
	db.AutoMigrate(&models.Project{}, &models.Contributor{}, &models.Contribution{},
		&models.Issue{}, &models.Release{}, &models.Dependency{})

	// Setup Services
	client := clients.New(cfg, logging)
	classifier := services.NewClassifier(db, services.DefaultRelevancePolicy, cfg.KeywordCacheTTL, nil)
	reconciler := services.NewReconciler(db, logging)
	suggester := services.NewSuggester(db, cfg.ProfileCacheTTL, nil)
	aggregator := services.NewDependencyAggregator(db, client, logging)
	syncer := services.NewSyncer(db, client, classifier, reconciler, logging, nil,
		cfg.ReposBaseURL, cfg.IssuesBaseURL, cfg.CommitsBaseURL, cfg.PackagesBaseURL)
	queue := services.NewQueue(db, syncer, logging,
		cfg.SyncWorkers, cfg.SyncQueueSize, cfg.SyncBatchSize, cfg.SyncMaxAge, nil)
	queue.Start()

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupProjectRoutes(router, db, cfg, client, queue, suggester, logging)
	setupContributorRoutes(router, db, reconciler, logging)
	setupDependencyRoutes(router, db, logging)

	// Setup Cron
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CronResync, func() {
		logging.Info("Running scheduled resync job...")
		count, err := queue.EnqueueLeastRecentlySynced(false)
		if err != nil {
			logging.Error("Resync job failed", zap.Error(err))
		} else {
			logging.Info("Resync job completed", zap.Int("enqueued", count))
		}
	})
	cronScheduler.AddFunc(cfg.CronDependencies, func() {
		logging.Info("Running scheduled dependency aggregation...")
		if err := aggregator.Aggregate(); err != nil {
			logging.Error("Dependency aggregation failed", zap.Error(err))
			return
		}
		if err := aggregator.ResolvePackages(100); err != nil {
			logging.Error("Dependency resolution failed", zap.Error(err))
		}
	})
	cronScheduler.AddFunc(cfg.CronContributorKeywords, func() {
		logging.Info("Running scheduled contributor keyword refresh...")
		refreshContributorKeywords(db, reconciler, logging)
	})
	if cfg.ExportS3Bucket != "" {
		s3Client, err := storage.NewS3Client(cfg.ExportS3Endpoint, cfg.ExportS3Region,
			cfg.ExportS3AccessKey, cfg.ExportS3SecretKey)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		cronScheduler.AddFunc(cfg.CronExport, func() {
			logging.Info("Running scheduled directory export...")
			exportDirectory(db, s3Client, cfg.ExportS3Bucket, logging)
		})
	}
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// exportDirectory uploads a JSON snapshot of the reviewed directory.
func exportDirectory(db *gorm.DB, s3Client *s3.Client, bucket string, log *zap.Logger) {
	var projects []models.Project
	if err := db.Where("reviewed = ?", true).Order("score DESC").Find(&projects).Error; err != nil {
		log.Error("Loading reviewed projects for export failed", zap.Error(err))
		return
	}
	data, err := json.Marshal(projects)
	if err != nil {
		log.Error("Marshalling export failed", zap.Error(err))
		return
	}
	key := fmt.Sprintf("projects-%s.json", time.Now().UTC().Format("2006-01-02"))
	if err := storage.UploadFile(context.Background(), s3Client, bucket, key, data); err != nil {
		log.Error("Export upload failed", zap.Error(err))
		return
	}
	log.Info("Directory export uploaded", zap.String("key", key), zap.Int("projects", len(projects)))
}

func refreshContributorKeywords(db *gorm.DB, reconciler *services.Reconciler, log *zap.Logger) {
	var projects []models.Project
	if err := db.Where("reviewed = ?", true).Find(&projects).Error; err != nil {
		log.Error("Loading reviewed projects failed", zap.Error(err))
		return
	}
	for i := range projects {
		if err := reconciler.UpdateKeywordsFromContributors(&projects[i]); err != nil {
			log.Warn("Contributor keyword refresh failed",
				zap.Uint("project_id", projects[i].ID), zap.Error(err))
		}
	}
	log.Info("Contributor keyword refresh completed", zap.Int("projects", len(projects)))
}

func setupProjectRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config,
	client *clients.Client, queue *services.Queue, suggester *services.Suggester, log *zap.Logger) {

	rg := router.Group("/projects")

	// Submit a URL; creates the project if unknown and schedules a sync.
	rg.POST("/lookup", func(c *gin.Context) {
		type LookupRequest struct {
			URL string `json:"url" binding:"required"`
		}
		var req LookupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		url := models.NormalizeURL(req.URL)
		if url == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid url"})
			return
		}

		var project models.Project
		err := db.Where("url = ?", url).First(&project).Error
		created := false
		if errors.Is(err, gorm.ErrRecordNotFound) {
			project = models.Project{URL: url}
			if err := db.Create(&project).Error; err != nil {
				log.Error("DB error creating project", zap.String("url", url), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
				return
			}
			created = true
			newProjectsCounter.Inc()
		} else if err != nil {
			log.Error("DB error looking up project", zap.String("url", url), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		jobID, err := queue.Enqueue(project.ID)
		if err != nil && !errors.Is(err, services.ErrQueueFull) {
			log.Error("Enqueue failed", zap.Uint("project_id", project.ID), zap.Error(err))
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, gin.H{"project": project, "job_id": jobID})
	})

	rg.GET("/", func(c *gin.Context) {
		query := db.Model(&models.Project{})

		if reviewed := c.Query("reviewed"); reviewed != "" {
			query = query.Where("reviewed = ?", reviewed == "true")
		}
		if matching := c.Query("matching_criteria"); matching != "" {
			query = query.Where("matching_criteria = ?", matching == "true")
		}
		if category := c.Query("category"); category != "" {
			query = query.Where("category = ?", category)
		}
		if subCategory := c.Query("sub_category"); subCategory != "" {
			query = query.Where("sub_category = ?", subCategory)
		}

		limit := 100
		if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
		page := 1
		if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
			page = p
		}

		var projects []models.Project
		err := query.Order("score DESC").Limit(limit).Offset((page - 1) * limit).Find(&projects).Error
		if err != nil {
			log.Error("Database query for projects failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, projects)
	})

	rg.GET("/:id", func(c *gin.Context) {
		var project models.Project
		if err := db.First(&project, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
				return
			}
			log.Error("DB error loading project", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, project)
	})

	// Serves the breakdown stored by the last sync; never recomputes.
	rg.GET("/:id/science-score", func(c *gin.Context) {
		var project models.Project
		if err := db.First(&project, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if len(project.ScienceScoreBreakdown) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not scored yet"})
			return
		}
		c.Data(http.StatusOK, "application/json", project.ScienceScoreBreakdown)
	})

	rg.POST("/:id/sync", func(c *gin.Context) {
		var project models.Project
		if err := db.First(&project, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		jobID, err := queue.Enqueue(project.ID)
		if err != nil {
			if errors.Is(err, services.ErrQueueFull) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sync queue full"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue failed"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
	})

	rg.POST("/:id/ping", func(c *gin.Context) {
		var project models.Project
		if err := db.First(&project, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		urls := project.PingURLs(cfg.ReposBaseURL, cfg.IssuesBaseURL, cfg.CommitsBaseURL, cfg.PackagesBaseURL)
		go func() {
			for _, u := range urls {
				client.Ping(u)
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"pinged": len(urls)})
	})

	rg.GET("/:id/suggestions", func(c *gin.Context) {
		var project models.Project
		if err := db.First(&project, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		category, err := suggester.SuggestCategory(&project)
		if err != nil {
			log.Error("Category suggestion failed", zap.Uint("project_id", project.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "suggestion error"})
			return
		}
		subCategory, err := suggester.SuggestSubCategory(&project)
		if err != nil {
			log.Error("Sub-category suggestion failed", zap.Uint("project_id", project.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "suggestion error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"category": category, "sub_category": subCategory})
	})

	rg.GET("/:id/issues", func(c *gin.Context) {
		var issues []models.Issue
		query := db.Where("project_id = ?", c.Param("id"))
		if c.Query("good_first_issue") == "true" {
			var all []models.Issue
			if err := query.Where("state = ?", "open").Find(&all).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
				return
			}
			for _, issue := range all {
				if issue.GoodFirstIssue() && !issue.Bot() {
					issues = append(issues, issue)
				}
			}
			c.JSON(http.StatusOK, issues)
			return
		}
		if err := query.Order("number DESC").Find(&issues).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, issues)
	})

	rg.GET("/:id/releases", func(c *gin.Context) {
		var releases []models.Release
		err := db.Where("project_id = ?", c.Param("id")).Order("published_at DESC").Find(&releases).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, releases)
	})
}

func setupContributorRoutes(router *gin.Engine, db *gorm.DB, reconciler *services.Reconciler, log *zap.Logger) {
	rg := router.Group("/contributors")

	rg.GET("/", func(c *gin.Context) {
		limit := 100
		if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
		var contributors []models.Contributor
		if err := db.Limit(limit).Find(&contributors).Error; err != nil {
			log.Error("Database query for contributors failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, contributors)
	})

	rg.GET("/:id", func(c *gin.Context) {
		var contributor models.Contributor
		if err := db.First(&contributor, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "contributor not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, contributor)
	})

	router.GET("/projects/:id/contributors", func(c *gin.Context) {
		var project models.Project
		if err := db.First(&project, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		contributors, err := reconciler.Contributors(&project)
		if err != nil {
			log.Error("Loading project contributors failed", zap.Uint("project_id", project.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, contributors)
	})
}

func setupDependencyRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/dependencies")

	rg.GET("/", func(c *gin.Context) {
		limit := 100
		if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
		query := db.Model(&models.Dependency{})
		if ecosystem := c.Query("ecosystem"); ecosystem != "" {
			query = query.Where("ecosystem = ?", ecosystem)
		}
		var dependencies []models.Dependency
		if err := query.Order("count DESC").Limit(limit).Find(&dependencies).Error; err != nil {
			log.Error("Database query for dependencies failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, dependencies)
	})
}
