package api

import (
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/httpmsg"
	"github.com/jonesrussell/north-cloud/static-httpd/internal/logger"
)

// User is the payload accepted by POST /api/users.
type User struct {
	Name string `json:"name" mapstructure:"name"`
	Age  int    `json:"age"  mapstructure:"age"`
}

// decodeUser reads name and age from a parsed body. Name must already be a
// string; age may be a number or a numeric string.
func decodeUser(body map[string]any) (User, bool) {
	if _, ok := body["name"].(string); !ok {
		return User{}, false
	}
	switch age := body["age"].(type) {
	case nil:
		return User{}, false
	case string:
		if strings.TrimSpace(age) == "" {
			return User{}, false
		}
	}

	var u User
	if err := mapstructure.WeakDecode(body, &u); err != nil {
		return User{}, false
	}
	return u, true
}

// CreateUser validates the parsed body and echoes the user back.
func (h *Handlers) CreateUser(req *httpmsg.Request, res *httpmsg.Response) error {
	if req.ParsedBody == nil {
		res.SetStatus(httpmsg.StatusBadRequest)
		return res.SetJSONBody(map[string]string{"error": "No body provided"})
	}

	u, ok := decodeUser(req.ParsedBody)
	if !ok {
		res.SetStatus(httpmsg.StatusBadRequest)
		return res.SetJSONBody(map[string]string{"error": "Invalid data types"})
	}

	h.log.Info("User created", logger.String("name", u.Name), logger.Int("age", u.Age))
	res.SetStatus(httpmsg.StatusCreated)
	return res.SetJSONBody(map[string]any{
		"message": "User created",
		"user":    u,
	})
}
