// Package easydao is a generic service layer over Bun. A Service wraps the
// DAO of one entity type, reports save outcomes as types.Status values,
// copies generated identifiers back onto saved entities, and prefers
// queries registered under conventional names such as "User.findAll".
package easydao
