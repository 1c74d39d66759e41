package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/grouptalk-dev/grouptalk/shared/api"
	"github.com/grouptalk-dev/grouptalk/shared/domain"
	internal_errors "github.com/grouptalk-dev/grouptalk/shared/errors"
	"github.com/grouptalk-dev/grouptalk/shared/utils"
)

func (c *APIClient) GetTopic(ctx context.Context, id domain.TopicId) (domain.Topic, error) {
	var topic domain.Topic
	path := fmt.Sprintf("/group/topics/%d", id)
	resp, err := c.do(ctx, "GET", path, nil)
	if err != nil {
		return topic, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return topic, &internal_errors.ErrorWithStatusCode{
			Message: fmt.Sprintf("topic %d not found or access denied", id), StatusCode: resp.StatusCode,
		}
	}

	if err := utils.Decode(resp.Body, &topic); err != nil {
		return topic, fmt.Errorf("cannot decode topic response: %w", err)
	}
	return topic, nil
}

func (c *APIClient) GetGroup(ctx context.Context, name domain.GroupName) (domain.Group, error) {
	var group domain.Group
	path := fmt.Sprintf("/group/%s", name)
	resp, err := c.do(ctx, "GET", path, nil)
	if err != nil {
		return group, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return group, &internal_errors.ErrorWithStatusCode{
			Message: fmt.Sprintf("group /%s not found", name), StatusCode: resp.StatusCode,
		}
	}

	if err := utils.Decode(resp.Body, &group); err != nil {
		return group, fmt.Errorf("cannot decode group response: %w", err)
	}
	return group, nil
}

// postWrite sends a JSON write and decodes the enveloped reply regardless of status.
// The caller branches on WriteResult.Status; transport failures are the only errors.
func (c *APIClient) postWrite(ctx context.Context, method, path string, data any) (api.WriteResult, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return api.WriteResult{}, fmt.Errorf("failed to marshal write request: %w", err)
	}

	resp, err := c.do(ctx, method, path, bytes.NewReader(payload))
	if err != nil {
		return api.WriteResult{}, err
	}
	defer resp.Body.Close()

	result := api.WriteResult{Status: resp.StatusCode}
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, fmt.Errorf("failed to read write response: %w", err)
	}
	// Rejections are expected to carry {message}; tolerate empty bodies.
	if len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, &result.Data); err != nil {
			return result, fmt.Errorf("cannot decode write response: %w", err)
		}
	}
	return result, nil
}

func (c *APIClient) CreateTopic(ctx context.Context, group domain.GroupName, data api.CreateTopicRequest) (api.WriteResult, error) {
	path := fmt.Sprintf("/group/%s/topics", group)
	return c.postWrite(ctx, "POST", path, data)
}

func (c *APIClient) EditTopic(ctx context.Context, id domain.TopicId, data api.EditTopicRequest) (api.WriteResult, error) {
	path := fmt.Sprintf("/group/topics/%d", id)
	return c.postWrite(ctx, "PUT", path, data)
}
