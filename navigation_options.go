package correlate

// NavigationOption configures a ResponseNavigationService.
type NavigationOption func(*ResponseNavigationService)

// WithNavigationLogger sets the logger. Nil is ignored.
func WithNavigationLogger(logger Logger) NavigationOption {
	return func(s *ResponseNavigationService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNavigationMetrics sets the metrics collector. Nil is ignored.
func WithNavigationMetrics(metrics Metrics) NavigationOption {
	return func(s *ResponseNavigationService) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithSelectionPolicy overrides which linked response navigation selects
// when a request has received several. Default is SelectMostRecent.
func WithSelectionPolicy(policy SelectionPolicy) NavigationOption {
	return func(s *ResponseNavigationService) {
		if policy != nil {
			s.policy = policy
		}
	}
}
