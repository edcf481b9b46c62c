package errno

// code=0 请求成功
// code=4xx 客户端请求错误
// code=5xx 服务器端错误
// code=2xxxx 业务处理错误码

type Errno struct {
	Code    int
	Message string
}

// Error 实现error接口
func (e *Errno) Error() string {
	return e.Message
}

var (
	OK = &Errno{Code: 200, Message: "Success"}

	ErrInvalidParam = &Errno{Code: 400, Message: "Invalid parameter"}
	ErrUnauthorized = &Errno{Code: 401, Message: "Unauthorized"}
	ErrNotFound     = &Errno{Code: 404, Message: "Not found"}

	ErrInternalServer = &Errno{Code: 500, Message: "Internal server error"}
	ErrUnknown        = &Errno{Code: 510, Message: "Unknown error"}

	// 业务错误码
	ErrSourceRefRequired   = &Errno{Code: 20001, Message: "Source reference is required"}
	ErrTitleRequired       = &Errno{Code: 20002, Message: "Title is required"}
	ErrDescriptionRequired = &Errno{Code: 20003, Message: "Description is required"}
	ErrDestinationInvalid  = &Errno{Code: 20004, Message: "Unsupported publish destination"}
	ErrQueueFull           = &Errno{Code: 20005, Message: "Transfer queue is full"}
	ErrNoSharedLink        = &Errno{Code: 20007, Message: "No shared link found to revoke"}
	ErrSchedulingInvalid   = &Errno{Code: 20008, Message: "Scheduling time is invalid"}
)
