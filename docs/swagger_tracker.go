package docs

// @title           GoVV Tracker API
// @version         1.0
// @description     Records bike rides from a simulated walk or live device positions, stores them as activities and derives points, levels, streaks and badges. Live samples stream over WebSocket.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Optional. "Bearer" followed by a space and an HS256 token carrying a rider_id claim.
