package server

// @title Arena API
// @version 1.0
// @description Tournament management API: groups, tournaments, stages, rosters, participations and looking-for-players posts.
// @description List endpoints accept page, pageSize, sortField, sortOrder and shape; every other query parameter is a filter.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https
