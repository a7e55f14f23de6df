package mongodb

import "errors"

var (
	ErrConnectFailed     = errors.New("mongodb: failed to connect")
	ErrHealthcheckFailed = errors.New("mongodb: healthcheck failed")
)
