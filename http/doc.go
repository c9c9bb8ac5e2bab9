// Package http provides the JSON response helpers used by the Time OS
// health and introspection endpoints.
//
// # Response
//
//	res := gohttp.NewResponse(w)
//
//	res.JSON(http.StatusOK, record)      // raw JSON body
//	res.Success(ids)                     // {"data": ids}
//	res.Error(http.StatusBadRequest, "bad identifier")
//	res.NotFound()                       // {"message": "Not found."}
//	res.ServiceUnavailable(record)       // 503 with the record as body
package http
