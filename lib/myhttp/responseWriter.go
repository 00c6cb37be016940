package myhttp

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/MarcGrol/courseshop/lib/myerrors"
	"github.com/MarcGrol/courseshop/lib/mylog"
)

type ResponseWriter interface {
	WriteError(c context.Context, w http.ResponseWriter, errorCode int, err error)
	WriteErrorWithStatus(c context.Context, w http.ResponseWriter, httpStatus int, errorCode int, err error)
	Write(c context.Context, w http.ResponseWriter, httpStatus int, resp interface{})
	WriteText(c context.Context, w http.ResponseWriter, httpStatus int, text string)
}

type ErrorResponse struct {
	ErrorCode int    `json:"code,omitempty"`
	Message   string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message,omitempty"`
}

func NewWriter(logger mylog.Logger) ResponseWriter {
	return &responseWriter{
		logger: logger,
	}
}

type responseWriter struct {
	logger mylog.Logger
}

func (rw responseWriter) WriteError(c context.Context, w http.ResponseWriter, errorCode int, err error) {
	rw.WriteErrorWithStatus(c, w, myerrors.GetHTTPStatus(err), errorCode, err)
}

func (rw responseWriter) WriteErrorWithStatus(c context.Context, w http.ResponseWriter, httpStatus int, errorCode int, err error) {
	rw.logger.Log(c, "", mylog.SeverityWarn, "Error response: http-status:%d, error-code:%d, error-msg:%s", httpStatus, errorCode, err)
	rw.write(w, httpStatus, ErrorResponse{
		ErrorCode: errorCode,
		Message:   myerrors.Message(err),
	})
}

func (rw responseWriter) Write(c context.Context, w http.ResponseWriter, httpStatus int, resp interface{}) {
	rw.logger.Log(c, "", mylog.SeverityInfo, "Success response: http-status:%d", httpStatus)
	rw.write(w, httpStatus, resp)
}

func (rw responseWriter) WriteText(c context.Context, w http.ResponseWriter, httpStatus int, text string) {
	rw.logger.Log(c, "", mylog.SeverityInfo, "Text response: http-status:%d", httpStatus)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(httpStatus)
	_, err := w.Write([]byte(text))
	if err != nil {
		log.Printf("Error writing text response: %s", err)
	}
}

func (rw responseWriter) write(w http.ResponseWriter, httpStatus int, resp interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "\t")
	err := encoder.Encode(resp)
	if err != nil {
		log.Printf("Error writing response: %s", err)
		return
	}
}
