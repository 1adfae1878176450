package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"taskhub/internal/domain/errors"
	"taskhub/internal/handler"
	"taskhub/internal/metrics"
	"taskhub/internal/response"
	"taskhub/internal/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TaskAPI struct {
	httpSrv  *http.Server
	handlers *handler.Handlers
	metrics  *metrics.Metrics
	cfg      *Config
	log      *zap.Logger
}

func NewTaskAPI(h *handler.Handlers, m *metrics.Metrics, cfg *Config, log *zap.Logger) *TaskAPI {
	if h == nil {
		return nil
	}
	if cfg == nil {
		defaults := DefaultConfig
		cfg = &defaults
	}
	if m == nil {
		m = metrics.New(cfg.ServiceName)
	}
	if log == nil {
		log = zap.NewNop()
	}

	api := &TaskAPI{
		httpSrv:  &http.Server{Addr: cfg.ListenAddr()},
		handlers: h,
		metrics:  m,
		cfg:      cfg,
		log:      log,
	}
	api.configRoutes()
	return api
}

func (api *TaskAPI) Start() error {
	if api.httpSrv == nil {
		return errors.ErrInternalServer
	}
	if api.httpSrv.Addr == "" {
		api.httpSrv.Addr = ":8080"
	}
	return api.httpSrv.ListenAndServe()
}

func (api *TaskAPI) Shutdown(ctx context.Context) error {
	if api.httpSrv == nil {
		return errors.ErrInternalServer
	}
	return api.httpSrv.Shutdown(ctx)
}

// Handler exposes the configured router.
func (api *TaskAPI) Handler() http.Handler {
	return api.httpSrv.Handler
}

func (api *TaskAPI) configRoutes() {
	if api.cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(RequestID(), AccessLog(api.log), api.metrics.Middleware(), Recovery(api.log))
	if api.cfg.EnableGzip {
		router.Use(GzipRequestDecompress())
	}

	router.NoRoute(func(ctx *gin.Context) {
		render(ctx)(response.NotFound("Route not found"))
	})
	router.NoMethod(func(ctx *gin.Context) {
		render(ctx)(response.Make(response.StatusError, errors.ErrMethodNotAllow.Error(), nil, http.StatusMethodNotAllowed))
	})

	router.GET("/health", api.health)
	router.GET("/metrics", gin.WrapH(api.metrics.Handler()))

	api.mount(&router.RouterGroup)
	api.mount(router.Group("/api/v1"))

	api.httpSrv.Handler = router
	if api.cfg.EnableGzip {
		compressed, err := CompressResponses(router)
		if err != nil {
			api.log.Error("response compression disabled", zap.Error(err))
			return
		}
		api.httpSrv.Handler = compressed
	}
}

func (api *TaskAPI) mount(r *gin.RouterGroup) {
	user := r.Group("/user")
	{
		user.POST("/add", api.createUser)
		user.GET("/all", api.listUsers)
		user.GET("/:id", api.getUser)
		user.GET("/:id/fetch", api.getUser)
		user.PUT("/:id/update", api.updateUser)
		user.DELETE("/:id/delete", api.deleteUser)
		user.GET("/:id/tasks", api.listUserTasks)
	}

	task := r.Group("/task")
	{
		task.POST("/add", api.createTask)
		task.GET("/all", api.listTasks)
		task.GET("/:id", api.getTask)
		task.GET("/:id/fetch", api.getTask)
		task.PUT("/:id/update", api.updateTask)
		task.DELETE("/:id/delete", api.deleteTask)
		task.PUT("/:id/assign/:user_id", api.assignTask)
		task.PUT("/:id/status/update", api.updateTaskStatus)
	}

	item := r.Group("/item")
	{
		item.POST("/add", api.createItem)
		item.GET("/all", api.listItems)
		item.GET("/:id", api.getItem)
		item.GET("/:id/fetch", api.getItem)
		item.PUT("/:id/update", api.updateItem)
		item.DELETE("/:id/delete", api.deleteItem)
	}
}

func render(ctx *gin.Context) func(response.Envelope, int) {
	return func(env response.Envelope, code int) {
		ctx.JSON(code, env)
	}
}

// pathID parses an integer path parameter. A value that is not an integer
// cannot name a record, so it is reported as not found.
func pathID(ctx *gin.Context, param, entity string) (int, bool) {
	raw := ctx.Param(param)
	id, err := strconv.Atoi(raw)
	if err != nil {
		render(ctx)(response.NotFound(fmt.Sprintf("%s with id %s not found", entity, raw)))
		return 0, false
	}
	return id, true
}

// maxBodyBytes bounds a request body after decompression.
const maxBodyBytes = 1 << 20

// payload reads the request body. A body that is not JSON at all is rejected
// here; shape checks happen in the handlers.
func payload(ctx *gin.Context) (any, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			render(ctx)(response.BadRequest(errors.ErrPayloadTooLarge.Error()))
			return nil, false
		}
		render(ctx)(response.BadRequest(errors.ErrBadRequest.Error()))
		return nil, false
	}
	raw, err := validation.Decode(body)
	if err != nil {
		render(ctx)(response.FromError(err))
		return nil, false
	}
	return raw, true
}

func (api *TaskAPI) health(ctx *gin.Context) {
	render(ctx)(response.Success("Service is healthy", gin.H{"service": api.cfg.ServiceName}, http.StatusOK))
}

func (api *TaskAPI) createUser(ctx *gin.Context) {
	body, ok := payload(ctx)
	if !ok {
		return
	}
	render(ctx)(api.handlers.CreateUser(body))
}

func (api *TaskAPI) listUsers(ctx *gin.Context) {
	render(ctx)(api.handlers.ListUsers())
}

func (api *TaskAPI) getUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "User")
	if !ok {
		return
	}
	render(ctx)(api.handlers.GetUser(id))
}

func (api *TaskAPI) updateUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "User")
	if !ok {
		return
	}
	body, ok := payload(ctx)
	if !ok {
		return
	}
	render(ctx)(api.handlers.UpdateUser(id, body))
}

func (api *TaskAPI) deleteUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "User")
	if !ok {
		return
	}
	render(ctx)(api.handlers.DeleteUser(id))
}

func (api *TaskAPI) listUserTasks(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "User")
	if !ok {
		return
	}
	render(ctx)(api.handlers.ListUserTasks(id))
}

func (api *TaskAPI) createTask(ctx *gin.Context) {
	body, ok := payload(ctx)
	if !ok {
		return
	}
	render(ctx)(api.handlers.CreateTask(body))
}

func (api *TaskAPI) listTasks(ctx *gin.Context) {
	render(ctx)(api.handlers.ListTasks())
}

func (api *TaskAPI) getTask(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Task")
	if !ok {
		return
	}
	render(ctx)(api.handlers.GetTask(id))
}

func (api *TaskAPI) updateTask(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Task")
	if !ok {
		return
	}
	body, ok := payload(ctx)
	if !ok {
		return
	}
	render(ctx)(api.handlers.UpdateTask(id, body))
}

func (api *TaskAPI) deleteTask(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Task")
	if !ok {
		return
	}
	render(ctx)(api.handlers.DeleteTask(id))
}

func (api *TaskAPI) assignTask(ctx *gin.Context) {
	taskID, ok := pathID(ctx, "id", "Task")
	if !ok {
		return
	}
	userID, ok := pathID(ctx, "user_id", "User")
	if !ok {
		return
	}
	render(ctx)(api.handlers.AssignTask(taskID, userID))
}

func (api *TaskAPI) updateTaskStatus(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Task")
	if !ok {
		return
	}
	body, ok := payload(ctx)
	if !ok {
		return
	}
	render(ctx)(api.handlers.UpdateTaskStatus(id, body))
}

func (api *TaskAPI) createItem(ctx *gin.Context) {
	body, ok := payload(ctx)
	if !ok {
		return
	}
	render(ctx)(api.handlers.CreateItem(body))
}

func (api *TaskAPI) listItems(ctx *gin.Context) {
	render(ctx)(api.handlers.ListItems())
}

func (api *TaskAPI) getItem(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Item")
	if !ok {
		return
	}
	render(ctx)(api.handlers.GetItem(id))
}

func (api *TaskAPI) updateItem(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Item")
	if !ok {
		return
	}
	body, ok := payload(ctx)
	if !ok {
		return
	}
	render(ctx)(api.handlers.UpdateItem(id, body))
}

func (api *TaskAPI) deleteItem(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Item")
	if !ok {
		return
	}
	render(ctx)(api.handlers.DeleteItem(id))
}
