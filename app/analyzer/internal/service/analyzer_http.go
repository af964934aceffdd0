package service

import (
	"context"
	"encoding/json"
	nethttp "net/http"

	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/engine"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/model"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/sse"
)

const (
	OperationAnalyzerAnalyze      = "/fact_radar.v1.Analyzer/Analyze"
	OperationAnalyzerAnalyzeBatch = "/fact_radar.v1.Analyzer/AnalyzeBatch"
	OperationAnalyzerVerifyImage  = "/fact_radar.v1.Analyzer/VerifyImage"
	OperationAnalyzerGetResult    = "/fact_radar.v1.Analyzer/GetResult"
	OperationAnalyzerArchive      = "/fact_radar.v1.Analyzer/Archive"
	OperationAnalyzerTranslate    = "/fact_radar.v1.Analyzer/Translate"
	OperationAnalyzerHealth       = "/fact_radar.v1.Analyzer/Health"
)

// RegisterAnalyzerHTTPServer 注册核查服务的全部路由
func RegisterAnalyzerHTTPServer(s *http.Server, srv *AnalyzerService) {
	r := s.Route("/")
	r.POST("/api/v1/analyze", _Analyzer_Analyze0_HTTP_Handler(srv))
	r.POST("/api/v1/analyze-batch", _Analyzer_AnalyzeBatch0_HTTP_Handler(srv))
	r.POST("/analyze-batch/text", _Analyzer_AnalyzeBatch0_HTTP_Handler(srv))
	r.POST("/api/v1/verify-image", _Analyzer_VerifyImage0_HTTP_Handler(srv))
	r.GET("/api/v1/results/{id}", _Analyzer_GetResult0_HTTP_Handler(srv))
	r.GET("/api/v1/archive", _Analyzer_Archive0_HTTP_Handler(srv))
	r.POST("/api/translate", _Analyzer_Translate0_HTTP_Handler(srv))
	r.GET("/health", _Analyzer_Health0_HTTP_Handler(srv))
	r.GET("/api/v1/health", _Analyzer_Health0_HTTP_Handler(srv))

	// 事件流不经过 codec，直接写 ResponseWriter
	s.HandleFunc("/api/v1/verify-stream", srv.streamHandler(srv.uc.Stream))
	s.HandleFunc("/api/v1/verify-image-stream", srv.streamHandler(srv.uc.StreamImage))
}

func _Analyzer_Analyze0_HTTP_Handler(srv *AnalyzerService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in model.AnalyzeRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationAnalyzerAnalyze)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Analyze(ctx, req.(*model.AnalyzeRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(map[string]any)
		return ctx.Result(200, reply)
	}
}

func _Analyzer_AnalyzeBatch0_HTTP_Handler(srv *AnalyzerService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in BatchRequest
		if err := ctx.Bind(&in.Items); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationAnalyzerAnalyzeBatch)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.AnalyzeBatch(ctx, req.(*BatchRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*model.BatchReply)
		return ctx.Result(200, reply)
	}
}

func _Analyzer_VerifyImage0_HTTP_Handler(srv *AnalyzerService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in model.AnalyzeRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationAnalyzerVerifyImage)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.VerifyImage(ctx, req.(*model.AnalyzeRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*model.ImageVerification)
		return ctx.Result(200, reply)
	}
}

func _Analyzer_GetResult0_HTTP_Handler(srv *AnalyzerService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		in := GetResultRequest{ID: ctx.Vars().Get("id")}
		http.SetOperation(ctx, OperationAnalyzerGetResult)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.GetResult(ctx, req.(*GetResultRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(json.RawMessage)
		return ctx.Result(200, reply)
	}
}

func _Analyzer_Archive0_HTTP_Handler(srv *AnalyzerService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		in := ArchiveRequest{Limit: parseLimit(ctx.Query().Get("limit"))}
		http.SetOperation(ctx, OperationAnalyzerArchive)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Archive(ctx, req.(*ArchiveRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*ArchiveReply)
		return ctx.Result(200, reply)
	}
}

func _Analyzer_Translate0_HTTP_Handler(srv *AnalyzerService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in TranslateRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationAnalyzerTranslate)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Translate(ctx, req.(*TranslateRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*TranslateReply)
		return ctx.Result(200, reply)
	}
}

func _Analyzer_Health0_HTTP_Handler(srv *AnalyzerService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in struct{}
		http.SetOperation(ctx, OperationAnalyzerHealth)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Health(ctx, req.(*struct{}))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*HealthReply)
		return ctx.Result(200, reply)
	}
}

type streamFunc func(ctx context.Context, req *model.AnalyzeRequest, emit engine.EmitFunc) error

// streamHandler 将分析进度以 data 帧推送给客户端，出错时以 error 事件结束
func (s *AnalyzerService) streamHandler(run streamFunc) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			w.Header().Set("Allow", nethttp.MethodPost)
			nethttp.Error(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		var req model.AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			nethttp.Error(w, "invalid request body: "+err.Error(), nethttp.StatusBadRequest)
			return
		}

		sw, err := sse.NewWriter(w)
		if err != nil {
			nethttp.Error(w, err.Error(), nethttp.StatusInternalServerError)
			return
		}
		ctx := r.Context()
		err = run(ctx, &req, func(ev engine.Event) error {
			return sw.Send(ev)
		})
		if err != nil {
			// 引擎已推送 error 事件，这里只记录
			s.log.WithContext(ctx).Warnf("stream %s ended with error: %v", r.URL.Path, err)
		}
	}
}
