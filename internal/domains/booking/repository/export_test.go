package repository

var OverlapFilter = overlapFilter
