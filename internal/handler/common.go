package handler // handler defines http handlers

import (
    "errors"  // errors provides the sentinel used in getMemberID
    "strconv" // strconv converts strings to numeric types

    "github.com/labstack/echo/v4" // echo defines request context types
)

// getMemberID extracts the member_id from echo.Context and converts it to
// uint64. The JWT middleware stores whatever type the claims decoder
// produced, so a few numeric representations are accepted.
func getMemberID(c echo.Context) (uint64, error) {
    v := c.Get("member_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64: // JSON numbers decode to float64
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid member_id in context")
}
