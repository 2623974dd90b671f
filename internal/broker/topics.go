package broker

import "strings"

// Topic layout:
//   sync/results/{task}      completed task events, published by the worker
//   sync/requests/{task}     incoming requests from external services
//   sync/responses/{req_id}  per-request responses

const requestTopicPrefix = "sync/requests/"

// BuildResultTopic builds the topic a task's results are published on.
func BuildResultTopic(task string) string {
	return "sync/results/" + task
}

// BuildResponseTopic builds the topic a request's response goes to.
func BuildResponseTopic(requestID string) string {
	return "sync/responses/" + requestID
}

// ParseRequestTopic extracts the task name from a request topic.
func ParseRequestTopic(topic string) (task string, ok bool) {
	if !strings.HasPrefix(topic, requestTopicPrefix) {
		return "", false
	}
	task = strings.TrimPrefix(topic, requestTopicPrefix)
	if task == "" || strings.Contains(task, "/") {
		return "", false
	}
	return task, true
}
