package main

const defaultPort = "COM12"
