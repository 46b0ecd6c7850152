package correlate

import (
	"fmt"
	"sync"
)

// IconConfiguration is the purely presentational configuration of response
// icons. It is replaced as a whole via UpdateIconConfiguration; individual
// fields are never mutated in place.
type IconConfiguration struct {
	// ClockIconPath is shown while a request is pending.
	ClockIconPath string `yaml:"clockIconPath"`

	// ArrowIconPath is shown once a response has been received.
	ArrowIconPath string `yaml:"arrowIconPath"`

	// DisabledClockIconPath is shown when navigation is disabled.
	DisabledClockIconPath string `yaml:"disabledClockIconPath"`

	// IconColor is the normal icon tint.
	IconColor string `yaml:"iconColor"`

	// HoverColor is the tint while hovered.
	HoverColor string `yaml:"hoverColor"`

	// DisabledColor is the tint for disabled icons.
	DisabledColor string `yaml:"disabledColor"`

	// IconSize is the rendered icon size in device-independent pixels.
	// Must be positive.
	IconSize float64 `yaml:"iconSize"`

	// EnableHoverEffects toggles hover highlighting.
	EnableHoverEffects bool `yaml:"enableHoverEffects"`

	// EnableClickAnimation toggles the click animation.
	EnableClickAnimation bool `yaml:"enableClickAnimation"`
}

// DefaultIconConfiguration returns the stock icon configuration.
func DefaultIconConfiguration() IconConfiguration {
	return IconConfiguration{
		ClockIconPath:         "icons/clock.svg",
		ArrowIconPath:         "icons/arrow-right.svg",
		DisabledClockIconPath: "icons/clock-disabled.svg",
		IconColor:             "#8a8a8a",
		HoverColor:            "#4a9eda",
		DisabledColor:         "#55555580",
		IconSize:              16,
		EnableHoverEffects:    true,
		EnableClickAnimation:  true,
	}
}

// Validate checks the configuration for usable values.
func (c IconConfiguration) Validate() error {
	if c.IconSize <= 0 {
		return fmt.Errorf("icon size must be positive, got %v", c.IconSize)
	}
	if c.ClockIconPath == "" || c.ArrowIconPath == "" || c.DisabledClockIconPath == "" {
		return fmt.Errorf("icon paths cannot be empty")
	}
	return nil
}

// IconViewModel is the per-request view model the message list binds to.
type IconViewModel struct {
	// RequestMessageID identifies the request row the icon belongs to.
	RequestMessageID string

	// Status is the displayed status. StatusNavigationDisabled overrides
	// the underlying correlation status while the response topic is
	// unsubscribed.
	Status ResponseStatus

	// IconPath is the icon asset to render.
	IconPath string

	// Tooltip is the hover text.
	Tooltip string

	// Clickable is true when clicking triggers navigation.
	Clickable bool
}

// IconClickResult is the outcome of an icon click.
type IconClickResult struct {
	// Handled is true whenever an icon exists for the request.
	Handled bool

	// NavigationTriggered is true when the click performed a successful
	// navigation.
	NavigationTriggered bool

	// ErrorMessage explains why navigation did not happen.
	ErrorMessage string

	// NavigationCommand is the command text equivalent to the click.
	NavigationCommand string
}

// IconStatusListener receives icon display-status transitions.
type IconStatusListener func(requestMessageID string, oldStatus, newStatus ResponseStatus)

// IconClickListener receives click outcomes.
type IconClickListener func(requestMessageID string, result IconClickResult)

// iconState tracks the underlying correlation status separately from the
// subscription override so re-subscribing restores the prior display.
type iconState struct {
	underlying ResponseStatus
	disabled   bool
}

func (st *iconState) displayed() ResponseStatus {
	if st.disabled {
		return StatusNavigationDisabled
	}
	return st.underlying
}

// ResponseIconService derives per-request icon view models from correlation
// status and turns clicks into navigation. It registers itself as a status
// listener on the correlation service, so icons follow status transitions
// without polling.
type ResponseIconService struct {
	correlation *MessageCorrelationService
	navigation  *ResponseNavigationService
	logger      Logger

	mu             sync.RWMutex
	config         IconConfiguration
	icons          map[string]*iconState
	statusHandlers []IconStatusListener
	clickHandlers  []IconClickListener
}

// IconOption configures a ResponseIconService.
type IconOption func(*ResponseIconService)

// WithIconConfiguration sets the initial icon configuration. Invalid
// configurations are ignored in favor of the default.
func WithIconConfiguration(config IconConfiguration) IconOption {
	return func(s *ResponseIconService) {
		if config.Validate() == nil {
			s.config = config
		}
	}
}

// WithIconLogger sets the logger. Nil is ignored.
func WithIconLogger(logger Logger) IconOption {
	return func(s *ResponseIconService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewResponseIconService creates an icon service bound to a correlation
// service and a navigation service.
func NewResponseIconService(correlation *MessageCorrelationService, navigation *ResponseNavigationService, opts ...IconOption) *ResponseIconService {
	s := &ResponseIconService{
		correlation: correlation,
		navigation:  navigation,
		logger:      NewNoOpLogger(),
		config:      DefaultIconConfiguration(),
		icons:       make(map[string]*iconState),
	}

	for _, opt := range opts {
		opt(s)
	}

	// Track correlation transitions for requests that have an icon.
	correlation.OnStatusChanged(func(requestMessageID string, _, newStatus ResponseStatus) {
		s.UpdateIconStatus(requestMessageID, newStatus)
	})

	return s
}

// OnIconStatusChanged subscribes to icon display-status transitions.
func (s *ResponseIconService) OnIconStatusChanged(fn IconStatusListener) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.statusHandlers = append(s.statusHandlers, fn)
}

// OnIconClicked subscribes to click outcomes.
func (s *ResponseIconService) OnIconClicked(fn IconClickListener) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.clickHandlers = append(s.clickHandlers, fn)
}

// CreateIconViewModel creates (or refreshes) the icon for a request.
// Returns nil when the request carries no response topic (nothing to show)
// or when the request is not tracked by the correlation service. An
// unsubscribed response topic displays as StatusNavigationDisabled without
// losing the underlying status.
func (s *ResponseIconService) CreateIconViewModel(requestMessageID string, hasResponseTopic, isResponseTopicSubscribed bool) *IconViewModel {
	if !hasResponseTopic {
		return nil
	}

	status, ok := s.correlation.ResponseStatus(requestMessageID)
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := &iconState{
		underlying: status,
		disabled:   !isResponseTopicSubscribed,
	}
	s.icons[requestMessageID] = state

	return s.viewModelLocked(requestMessageID, state)
}

// IconViewModel returns the current view model for a request, nil if no
// icon exists.
func (s *ResponseIconService) IconViewModel(requestMessageID string) *IconViewModel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.icons[requestMessageID]
	if !ok {
		return nil
	}
	return s.viewModelLocked(requestMessageID, state)
}

// UpdateIconStatus sets the underlying correlation status for an icon.
// Returns false if no icon exists for the request. While navigation is
// disabled the displayed status stays StatusNavigationDisabled; the new
// underlying status is retained for when the topic is re-subscribed.
func (s *ResponseIconService) UpdateIconStatus(requestMessageID string, newStatus ResponseStatus) bool {
	s.mu.Lock()
	state, ok := s.icons[requestMessageID]
	if !ok {
		s.mu.Unlock()
		return false
	}

	oldDisplayed := state.displayed()
	state.underlying = newStatus
	newDisplayed := state.displayed()
	s.mu.Unlock()

	if oldDisplayed != newDisplayed {
		s.notifyStatus(requestMessageID, oldDisplayed, newDisplayed)
	}
	return true
}

// SetTopicSubscribed flips the navigation-disabled override for an icon as
// the response topic is unsubscribed or re-subscribed. Re-subscribing
// restores the underlying status. Returns false if no icon exists.
func (s *ResponseIconService) SetTopicSubscribed(requestMessageID string, subscribed bool) bool {
	s.mu.Lock()
	state, ok := s.icons[requestMessageID]
	if !ok {
		s.mu.Unlock()
		return false
	}

	oldDisplayed := state.displayed()
	state.disabled = !subscribed
	newDisplayed := state.displayed()
	s.mu.Unlock()

	if oldDisplayed != newDisplayed {
		s.notifyStatus(requestMessageID, oldDisplayed, newDisplayed)
	}
	return true
}

// RemoveIcon drops the icon for a request, for example when its message
// row leaves the buffer. Returns false if no icon exists.
func (s *ResponseIconService) RemoveIcon(requestMessageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.icons[requestMessageID]; !ok {
		return false
	}
	delete(s.icons, requestMessageID)
	return true
}

// HandleIconClick processes a click on a request's icon. Clicks on
// received responses trigger navigation; clicks on pending, hidden or
// navigation-disabled icons are handled without navigating.
func (s *ResponseIconService) HandleIconClick(requestMessageID string) IconClickResult {
	s.mu.RLock()
	state, ok := s.icons[requestMessageID]
	var displayed ResponseStatus
	if ok {
		displayed = state.displayed()
	}
	s.mu.RUnlock()

	if !ok {
		return IconClickResult{
			Handled:      false,
			ErrorMessage: fmt.Sprintf("no icon for request %q", requestMessageID),
		}
	}

	result := IconClickResult{Handled: true}
	if cmd, ok := s.navigation.NavigationCommandFor(requestMessageID); ok {
		result.NavigationCommand = cmd
	}

	switch displayed {
	case StatusReceived:
		nav := s.navigation.NavigateToResponse(requestMessageID)
		result.NavigationTriggered = nav.Success
		if !nav.Success {
			result.ErrorMessage = nav.ErrorMessage
		}

	case StatusPending:
		result.ErrorMessage = "response not received yet"

	case StatusHidden:
		result.ErrorMessage = "request expired before a response arrived"

	case StatusNavigationDisabled:
		result.ErrorMessage = "navigation disabled: response topic not subscribed"
	}

	s.notifyClick(requestMessageID, result)
	return result
}

// IconConfiguration returns the current configuration.
func (s *ResponseIconService) IconConfiguration() IconConfiguration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.config
}

// UpdateIconConfiguration replaces the whole configuration. Invalid
// configurations are rejected.
func (s *ResponseIconService) UpdateIconConfiguration(config IconConfiguration) error {
	if err := config.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.config = config
	return nil
}

// IconCount returns the number of tracked icons.
func (s *ResponseIconService) IconCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.icons)
}

// viewModelLocked builds the view model for a state; callers hold s.mu.
func (s *ResponseIconService) viewModelLocked(requestMessageID string, state *iconState) *IconViewModel {
	vm := &IconViewModel{
		RequestMessageID: requestMessageID,
		Status:           state.displayed(),
	}

	switch vm.Status {
	case StatusPending:
		vm.IconPath = s.config.ClockIconPath
		vm.Tooltip = "Waiting for response"

	case StatusReceived:
		vm.IconPath = s.config.ArrowIconPath
		vm.Tooltip = "Response received, click to view"
		vm.Clickable = true

	case StatusHidden:
		vm.IconPath = s.config.DisabledClockIconPath
		vm.Tooltip = "Request expired"

	case StatusNavigationDisabled:
		vm.IconPath = s.config.DisabledClockIconPath
		vm.Tooltip = "Navigation disabled: response topic not subscribed"
	}

	return vm
}

func (s *ResponseIconService) notifyStatus(requestMessageID string, oldStatus, newStatus ResponseStatus) {
	s.mu.RLock()
	handlers := make([]IconStatusListener, len(s.statusHandlers))
	copy(handlers, s.statusHandlers)
	s.mu.RUnlock()

	for _, fn := range handlers {
		fn(requestMessageID, oldStatus, newStatus)
	}
}

func (s *ResponseIconService) notifyClick(requestMessageID string, result IconClickResult) {
	s.mu.RLock()
	handlers := make([]IconClickListener, len(s.clickHandlers))
	copy(handlers, s.clickHandlers)
	s.mu.RUnlock()

	for _, fn := range handlers {
		fn(requestMessageID, result)
	}
}
