package correlate

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// gotoResponseVerb is the built-in navigation sub-command. The full grammar
// is ":gotoresponse <requestMessageID>".
const gotoResponseVerb = "gotoresponse"

// commandPrefix starts every navigation command.
const commandPrefix = ":"

// NavigationErrorType classifies navigation failures.
type NavigationErrorType int

const (
	// NavigationErrorNone means the navigation succeeded.
	NavigationErrorNone NavigationErrorType = iota

	// NavigationErrorRequestNotFound means the request id is not tracked.
	NavigationErrorRequestNotFound

	// NavigationErrorNoCorrelationData means the request has no linked
	// response to navigate to.
	NavigationErrorNoCorrelationData

	// NavigationErrorTopicNotSubscribed means the response topic is not
	// currently subscribed.
	NavigationErrorTopicNotSubscribed

	// NavigationErrorResponseUnavailable means the linked response
	// message has been evicted from the host's message buffer.
	NavigationErrorResponseUnavailable

	// NavigationErrorInvalidCommand means the command text failed to
	// parse.
	NavigationErrorInvalidCommand
)

// String returns the string representation of the error type.
func (t NavigationErrorType) String() string {
	switch t {
	case NavigationErrorNone:
		return "none"
	case NavigationErrorRequestNotFound:
		return "request_not_found"
	case NavigationErrorNoCorrelationData:
		return "no_correlation_data"
	case NavigationErrorTopicNotSubscribed:
		return "response_topic_not_subscribed"
	case NavigationErrorResponseUnavailable:
		return "response_no_longer_available"
	case NavigationErrorInvalidCommand:
		return "invalid_command"
	default:
		return "unknown"
	}
}

// NavigationResult is the typed outcome of a navigation attempt. Failures
// are results, never errors: navigation input typically originates from
// free-text user entry.
type NavigationResult struct {
	// Success is true if a response message was selected.
	Success bool

	// SelectedMessageID is the response message that was selected.
	SelectedMessageID string

	// SelectedTopic is the topic of the selected response.
	SelectedTopic string

	// ErrorType classifies the failure, NavigationErrorNone on success.
	ErrorType NavigationErrorType

	// ErrorMessage is a human-readable failure description.
	ErrorMessage string

	// NavigatedAt is when the attempt started.
	NavigatedAt time.Time

	// Duration is how long resolution took.
	Duration time.Duration
}

// NavigationCommand is a read-only projection of a registered command for
// display in a command palette.
type NavigationCommand struct {
	// Command is the executable command text.
	Command string

	// Description is a human-readable summary.
	Description string

	// RequestMessageID is the request the command navigates from.
	RequestMessageID string

	// ResponseTopic is the topic the response is expected on.
	ResponseTopic string

	// IsEnabled reflects CanNavigateToResponse at enumeration time.
	IsEnabled bool
}

// SelectionPolicy picks which linked response to navigate to when a request
// has received more than one. The input slice is in arrival order and never
// empty.
type SelectionPolicy func(responseMessageIDs []string) string

// SelectMostRecent picks the most recently linked response. This is the
// default policy: navigation jumps to the latest answer.
func SelectMostRecent(responseMessageIDs []string) string {
	return responseMessageIDs[len(responseMessageIDs)-1]
}

// SelectFirst picks the first linked response.
func SelectFirst(responseMessageIDs []string) string {
	return responseMessageIDs[0]
}

// NavigationListener receives completed navigation results. Invoked
// synchronously; listeners must not block.
type NavigationListener func(NavigationResult)

// ResponseNavigationService resolves request ids to "select this message"
// actions. It never mutates correlation state: it reads from the
// correlation service, validates against the host's subscription state and
// message buffer, and reports the selection to the host UI sink.
type ResponseNavigationService struct {
	correlation   *MessageCorrelationService
	subscriptions SubscriptionChecker
	store         MessageStore
	selector      MessageSelector
	policy        SelectionPolicy
	logger        Logger
	metrics       Metrics

	mu        sync.RWMutex
	commands  map[string]NavigationCommand
	listeners []NavigationListener
}

// NewResponseNavigationService creates a navigation service over a
// correlation service. A nil subscriptions checker treats every topic as
// subscribed, a nil store treats every message as retrievable, and a nil
// selector makes successful navigations a no-op report.
func NewResponseNavigationService(correlation *MessageCorrelationService, subscriptions SubscriptionChecker, store MessageStore, selector MessageSelector, opts ...NavigationOption) *ResponseNavigationService {
	s := &ResponseNavigationService{
		correlation:   correlation,
		subscriptions: subscriptions,
		store:         store,
		selector:      selector,
		policy:        SelectMostRecent,
		logger:        NewNoOpLogger(),
		metrics:       &NoOpMetrics{},
		commands:      make(map[string]NavigationCommand),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// OnNavigationCompleted subscribes to navigation results.
func (s *ResponseNavigationService) OnNavigationCompleted(fn NavigationListener) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, fn)
}

// CanNavigateToResponse reports whether navigation would succeed cheaply:
// the request is known, a response has been received, and the response
// topic is subscribed. It does not probe the message buffer.
func (s *ResponseNavigationService) CanNavigateToResponse(requestMessageID string) bool {
	status, ok := s.correlation.ResponseStatus(requestMessageID)
	if !ok || status != StatusReceived {
		return false
	}

	topic, ok := s.correlation.ResponseTopic(requestMessageID)
	if !ok {
		return false
	}
	return s.isSubscribed(topic)
}

// NavigateToResponse resolves the request's latest linked response (per the
// selection policy) and selects it in the host UI. All failures come back
// as typed results.
func (s *ResponseNavigationService) NavigateToResponse(requestMessageID string) NavigationResult {
	start := time.Now()

	result := s.resolve(requestMessageID)
	result.NavigatedAt = start
	result.Duration = time.Since(start)

	if result.Success && s.selector != nil {
		s.selector.SelectMessage(result.SelectedMessageID, result.SelectedTopic)
	}

	s.metrics.Counter("navigation_attempts", MetricLabels{"outcome": result.ErrorType.String()}).Inc()
	s.metrics.Histogram("navigation_seconds", nil).ObserveDuration(result.Duration)

	if result.Success {
		s.logger.Debug("navigated to response", LogFields{
			LogFieldRequestID:  requestMessageID,
			LogFieldResponseID: result.SelectedMessageID,
			LogFieldDuration:   result.Duration,
		})
	} else {
		s.logger.Debug("navigation failed", LogFields{
			LogFieldRequestID: requestMessageID,
			LogFieldError:     result.ErrorMessage,
		})
	}

	s.notifyCompleted(result)
	return result
}

func (s *ResponseNavigationService) resolve(requestMessageID string) NavigationResult {
	entry, ok := s.correlation.CorrelationEntry(requestMessageID)
	if !ok {
		return NavigationResult{
			ErrorType:    NavigationErrorRequestNotFound,
			ErrorMessage: fmt.Sprintf("request %q is not tracked", requestMessageID),
		}
	}

	if len(entry.ResponseMessageIDs) == 0 {
		return NavigationResult{
			ErrorType:    NavigationErrorNoCorrelationData,
			ErrorMessage: fmt.Sprintf("no response linked for request %q", requestMessageID),
		}
	}

	if !s.isSubscribed(entry.ResponseTopic) {
		return NavigationResult{
			ErrorType:    NavigationErrorTopicNotSubscribed,
			ErrorMessage: fmt.Sprintf("response topic %q is not subscribed", entry.ResponseTopic),
		}
	}

	selected := s.policy(entry.ResponseMessageIDs)
	if s.store != nil && !s.store.Contains(selected) {
		return NavigationResult{
			ErrorType:    NavigationErrorResponseUnavailable,
			ErrorMessage: fmt.Sprintf("response message %q is no longer available", selected),
		}
	}

	return NavigationResult{
		Success:           true,
		SelectedMessageID: selected,
		SelectedTopic:     entry.ResponseTopic,
	}
}

// NavigationCommandFor builds the canonical command text for a request,
// ":gotoresponse <requestMessageID>". Returns false if the request is not
// tracked. The text is deterministic: repeated calls return the same
// string.
func (s *ResponseNavigationService) NavigationCommandFor(requestMessageID string) (string, bool) {
	if _, ok := s.correlation.ResponseStatus(requestMessageID); !ok {
		return "", false
	}
	return commandPrefix + gotoResponseVerb + " " + requestMessageID, true
}

// RegisterNavigationCommand records a discoverable command for the request,
// with either the canonical text or a custom one. Custom text must start
// with a colon. Registration does not perform navigation. Returns false
// for unknown requests or invalid custom text.
func (s *ResponseNavigationService) RegisterNavigationCommand(requestMessageID, customCommandText string) bool {
	text, ok := s.NavigationCommandFor(requestMessageID)
	if !ok {
		return false
	}

	if customCommandText != "" {
		if !strings.HasPrefix(customCommandText, commandPrefix) {
			return false
		}
		text = customCommandText
	}

	topic, _ := s.correlation.ResponseTopic(requestMessageID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.commands[requestMessageID] = NavigationCommand{
		Command:          text,
		Description:      fmt.Sprintf("Go to the response for request %s", requestMessageID),
		RequestMessageID: requestMessageID,
		ResponseTopic:    topic,
	}
	return true
}

// UnregisterNavigationCommand drops a registered command.
func (s *ResponseNavigationService) UnregisterNavigationCommand(requestMessageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.commands[requestMessageID]; !ok {
		return false
	}
	delete(s.commands, requestMessageID)
	return true
}

// AvailableNavigationCommands enumerates registered commands whose requests
// are still tracked, each flagged IsEnabled per CanNavigateToResponse,
// sorted by request message id.
func (s *ResponseNavigationService) AvailableNavigationCommands() []NavigationCommand {
	s.mu.RLock()
	snapshot := make([]NavigationCommand, 0, len(s.commands))
	for _, cmd := range s.commands {
		snapshot = append(snapshot, cmd)
	}
	s.mu.RUnlock()

	commands := make([]NavigationCommand, 0, len(snapshot))
	for _, cmd := range snapshot {
		if _, ok := s.correlation.ResponseStatus(cmd.RequestMessageID); !ok {
			continue
		}
		cmd.IsEnabled = s.CanNavigateToResponse(cmd.RequestMessageID)
		commands = append(commands, cmd)
	}

	sort.Slice(commands, func(i, j int) bool {
		return commands[i].RequestMessageID < commands[j].RequestMessageID
	})
	return commands
}

// ExecuteNavigationCommand parses and executes navigation command text.
// The grammar is ":gotoresponse <requestMessageID>", plus any custom texts
// recorded via RegisterNavigationCommand (matched exactly). Malformed input
// yields a failed result with a descriptive message, never an error.
func (s *ResponseNavigationService) ExecuteNavigationCommand(commandText string) NavigationResult {
	trimmed := strings.TrimSpace(commandText)

	if trimmed == "" {
		return s.parseFailure("navigation command is empty")
	}

	if !strings.HasPrefix(trimmed, commandPrefix) {
		return s.parseFailure("navigation commands must start with a colon (:)")
	}

	// Custom command texts are matched verbatim before grammar parsing.
	if requestID, ok := s.lookupCustomCommand(trimmed); ok {
		return s.NavigateToResponse(requestID)
	}

	fields := strings.Fields(strings.TrimPrefix(trimmed, commandPrefix))
	if len(fields) == 0 {
		return s.parseFailure("navigation command is missing a sub-command")
	}

	verb := strings.ToLower(fields[0])
	if verb != gotoResponseVerb {
		return s.parseFailure(fmt.Sprintf("unknown navigation command %q", fields[0]))
	}

	if len(fields) < 2 {
		return s.parseFailure("gotoresponse requires a request message id")
	}
	if len(fields) > 2 {
		return s.parseFailure("gotoresponse takes exactly one request message id")
	}

	return s.NavigateToResponse(fields[1])
}

func (s *ResponseNavigationService) lookupCustomCommand(text string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for requestID, cmd := range s.commands {
		if cmd.Command == text {
			return requestID, true
		}
	}
	return "", false
}

func (s *ResponseNavigationService) parseFailure(message string) NavigationResult {
	now := time.Now()

	s.logger.Debug("navigation command rejected", LogFields{
		LogFieldError: message,
	})
	s.metrics.Counter("navigation_attempts", MetricLabels{"outcome": NavigationErrorInvalidCommand.String()}).Inc()

	return NavigationResult{
		ErrorType:    NavigationErrorInvalidCommand,
		ErrorMessage: message,
		NavigatedAt:  now,
	}
}

func (s *ResponseNavigationService) notifyCompleted(result NavigationResult) {
	s.mu.RLock()
	listeners := make([]NavigationListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(result)
	}
}

func (s *ResponseNavigationService) isSubscribed(topic string) bool {
	if s.subscriptions == nil {
		return true
	}
	return s.subscriptions.IsTopicSubscribed(topic)
}
