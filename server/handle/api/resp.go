package api

// Resp is the envelope of every JSON response.
type Resp struct {
	ErrNo  Code        `json:"err_no"`
	ErrMsg string      `json:"err_msg"`
	Data   interface{} `json:"data,omitempty"`
}

func RespOK(data interface{}) Resp {
	return Resp{
		Data: data,
	}
}

func RespErr(errNo Code, errMsg string) Resp {
	return Resp{
		ErrNo:  errNo,
		ErrMsg: errMsg,
	}
}
