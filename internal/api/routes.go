package api

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.HandleFunc("/", s.handleRoot)
	s.router.HandleFunc("/health", s.handleHealth)

	s.router.HandleFunc("/prioritize", s.handlePrioritize)
	s.router.HandleFunc("/compare-heuristics", s.handleCompareHeuristics)

	s.router.HandleFunc("/policies", s.handleListPolicies)
	s.router.HandleFunc("/runs/", s.handleListRuns) // GET /runs/:repo_id?limit=N
}
