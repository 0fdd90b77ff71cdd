// Package main 是应用程序的入口点。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"tigersai/internal/collaborator"
	"tigersai/internal/config"
	"tigersai/internal/handler"
	"tigersai/internal/middleware"
	"tigersai/internal/model"
	"tigersai/internal/pipeline"
	"tigersai/internal/repository"
	"tigersai/internal/service"
	"tigersai/pkg/database"
	"tigersai/pkg/es"
	"tigersai/pkg/kafka"
	"tigersai/pkg/log"
	"tigersai/pkg/script"
	"tigersai/pkg/storage"
	"tigersai/pkg/token"
)

func main() {
	configPath := flag.String("config", "./configs/config.yaml", "path to config file")
	flag.Parse()

	// 1. 初始化配置
	config.Init(*configPath)
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库和 Redis
	database.InitDB(cfg.Database.Driver, cfg.Database.DSN)
	database.InitRedis(cfg.Database.Redis)

	// 后台任务与 HTTP 服务共用同一个根 context，收到停机信号时取消
	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// 4. 可选组件：未配置时对应功能返回 503
	var searcher service.ConversationSearcher
	esClient, err := es.InitES(cfg.Elasticsearch)
	if err != nil {
		log.Fatal("Elasticsearch 初始化失败", err)
	}
	if esClient != nil {
		searcher = esClient
	}

	var objectStore service.ObjectStore
	minioStore, err := storage.InitMinIO(cfg.MinIO)
	if err != nil {
		log.Fatal("MinIO 初始化失败", err)
	}
	if minioStore != nil {
		objectStore = minioStore
	}

	var publisher service.EventPublisher
	producer := kafka.NewProducer(cfg.Kafka)
	if producer != nil {
		publisher = producer
		defer producer.Close()
	}

	// 5. 初始化 Repository
	userRepo := repository.NewUserRepository(database.DB)
	conversationRepo := repository.NewConversationRepository(database.DB)
	sessionRepo := repository.NewSessionRepository(database.RDB)

	// 6. 初始化 Service (依赖注入)
	loc := cfg.Calendar.Location()
	runner := script.NewExecRunner("", cfg.Collaborator.Timeout)
	responder := collaborator.NewScriptResponder(runner, cfg.Collaborator)
	subnetCalc := collaborator.NewScriptSubnetCalculator(runner, cfg.Collaborator)

	sessionManager := service.NewSessionManager(sessionRepo, cfg.Session.IdleTimeout)
	userService := service.NewUserService(userRepo, sessionManager)
	adminService := service.NewAdminService(userRepo)
	chatService := service.NewChatService(responder, conversationRepo, publisher, cfg.Collaborator.Timeout)
	conversationService := service.NewConversationService(conversationRepo, loc)
	exportService := service.NewExportService(conversationService, objectStore, loc)
	searchService := service.NewSearchService(searcher)
	subnetService := service.NewSubnetService(subnetCalc, cfg.Collaborator.SubnetTimeout)

	// 7. 启动后台 Kafka 消费者，把对话写入检索索引
	if producer != nil && esClient != nil {
		// reader 由 StartConsumer 退出时关闭
		go kafka.StartConsumer(rootCtx, kafka.NewReader(cfg.Kafka), pipeline.NewProcessor(esClient), kafka.NewRedisAttemptCounter(database.RDB))
	}

	// 8. 会话 cookie 与 bearer token
	sessionSecret := cfg.Session.Secret
	if sessionSecret == "" {
		sessionSecret = uuid.NewString() + uuid.NewString()
		log.Warnf("session.secret 未配置，使用随机密钥，重启后所有会话失效")
	}
	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		jwtSecret = sessionSecret
	}
	jwtManager := token.NewJWTManager(jwtSecret, cfg.JWT.AccessTokenExpireHours)
	cookieStore := middleware.NewCookieStore(sessionSecret, int(cfg.Session.IdleTimeout/time.Second), cfg.Session.Secure)
	auth := middleware.NewSessionAuth(cookieStore, cfg.Session.CookieName, sessionManager, jwtManager)

	// 9. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger("/login"), gin.Recovery())
	registerRoutes(r, cfg, auth, jwtManager, routeServices{
		users:         userService,
		admin:         adminService,
		chat:          chatService,
		sessions:      sessionManager,
		conversations: conversationService,
		exports:       exportService,
		search:        searchService,
		subnet:        subnetService,
	}, loc)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}

type routeServices struct {
	users         service.UserService
	admin         service.AdminService
	chat          service.ChatService
	sessions      service.SessionManager
	conversations service.ConversationService
	exports       service.ExportService
	search        service.SearchService
	subnet        service.SubnetService
}

func registerRoutes(r *gin.Engine, cfg config.Config, auth *middleware.SessionAuth, jwtManager *token.JWTManager, svc routeServices, loc *time.Location) {
	pages := handler.NewPageHandler(cfg.Server.PublicDir)
	authHandler := handler.NewAuthHandler(svc.users, auth, jwtManager)
	chatHandler := handler.NewChatHandler(svc.chat, svc.sessions)
	conversationHandler := handler.NewConversationHandler(svc.conversations, svc.exports, loc)
	subnetHandler := handler.NewSubnetHandler(svc.subnet)

	r.Static("/static", filepath.Join(cfg.Server.PublicDir, "static"))

	// 无需认证的路由
	r.GET("/", pages.Serve("login.html"))
	r.GET("/login", pages.Serve("login.html"))
	r.POST("/login", authHandler.Login)
	r.POST("/logout", authHandler.Logout)

	// 页面：会话无效时重定向到首页
	r.GET("/chat", auth.RequireSessionPage(), pages.Serve("chat.html"))
	r.GET("/subnetcalculator", auth.RequireSessionPage(), pages.Serve("subnetcalculator.html"))

	// API：会话无效时返回 401
	api := r.Group("/", auth.RequireSession())
	{
		api.POST("/chat", chatHandler.Ask)
		api.GET("/chat/ws", chatHandler.Stream)

		calendar := api.Group("/calendar")
		{
			calendar.GET("/conversationsByMonth", conversationHandler.ByMonth)
			calendar.GET("/conversations", conversationHandler.ByDay)
			calendar.GET("/export", conversationHandler.Export)
			calendar.GET("/search", handler.NewSearchHandler(svc.search).Search)
		}

		api.GET("/teacher/students",
			middleware.RequireRole(model.RoleTeacher, "Unauthorized: Only teachers can access this feature."),
			handler.NewUserHandler(svc.users).ListStudents)
		api.GET("/admin/users",
			middleware.RequireRole(model.RoleAdmin, "Unauthorized: Only admins can access this feature."),
			handler.NewAdminHandler(svc.admin).ListUsers)

		api.POST("/calculateIPv4", subnetHandler.Calculate(collaborator.IPv4))
		api.POST("/calculateIPv6", subnetHandler.Calculate(collaborator.IPv6))
	}
}
